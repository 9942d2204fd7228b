package models

type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment - загруженный пользователем файл (фото или документ)
type Attachment struct {
	FileID string
	Kind   AttachmentKind
}

// CallBackData - разобранное поле callback_data кнопки: команда и необязательный аргумент (ID)
type CallBackData struct {
	Command string
	Arg     string
}
