package bot_commands

const ( // Команды без аргумента

	Start = "start"
	Admin = "admin"
	//----------------user---------------
	MainMenu       = "main_menu"
	Catalog        = "catalog"
	ViewCart       = "view_cart"
	ClearCart      = "clear_cart"
	Checkout       = "checkout"
	ConfirmPayment = "confirm_payment"

	//----------------admin---------------
	AdminAddProduct    = "admin_add_product"
	AdminRemoveProduct = "admin_remove_product"
	AdminViewOrders    = "admin_view_orders"
	AdminBack          = "admin_back"
	NewCategory        = "new_category"
	Cancel             = "cancel"
)

const ( // Команды с аргументом: "<команда>_<ID>"

	//----------------user---------------
	Category = "category"
	Item     = "item"
	Add      = "add"

	//----------------admin---------------
	PickCategory = "pick"
	Remove       = "remove"
	Deliver      = "deliver"
)

// Команды без аргумента; всё остальное разбирается как "<команда>_<аргумент>"
var Plain = map[string]bool{
	MainMenu:           true,
	Catalog:            true,
	ViewCart:           true,
	ClearCart:          true,
	Checkout:           true,
	ConfirmPayment:     true,
	AdminAddProduct:    true,
	AdminRemoveProduct: true,
	AdminViewOrders:    true,
	AdminBack:          true,
	NewCategory:        true,
	Cancel:             true,
}
