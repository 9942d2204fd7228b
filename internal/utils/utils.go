package utils

import (
	"strings"
	"tg_shop/internal/bot_commands"
	"tg_shop/models"
)

// Кодирует команду в строку callback_data: "команда" или "команда_аргумент"
func Code_request(data models.CallBackData) string {
	if data.Arg == "" {
		return data.Command
	}
	return data.Command + "_" + data.Arg
}

// Разбирает callback_data. Команды из bot_commands.Plain содержат "_" в имени и не имеют аргумента
func Decode_request(encoded string) models.CallBackData {
	if bot_commands.Plain[encoded] {
		return models.CallBackData{Command: encoded}
	}

	command, arg, found := strings.Cut(encoded, "_")
	if !found {
		return models.CallBackData{Command: encoded}
	}
	return models.CallBackData{Command: command, Arg: arg}
}

// Кнопка с командой без аргумента
func Cmd(command string) string {
	return Code_request(models.CallBackData{Command: command})
}

// Кнопка с командой и аргументом
func CmdArg(command, arg string) string {
	return Code_request(models.CallBackData{Command: command, Arg: arg})
}
