package dbtest

// The statements below mirror pkg/migrate/migrations with sqlite column
// types: uuids and money as TEXT, dates as DATETIME, booleans as INTEGER.

const StoresDDL = `CREATE TABLE stores (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT,
	city TEXT,
	state TEXT,
	phone TEXT,
	email TEXT,
	created_at DATETIME,
	updated_at DATETIME
)`

const RepsDDL = `CREATE TABLE reps (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
)`

const AdminsDDL = `CREATE TABLE admins (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	created_at DATETIME,
	updated_at DATETIME
)`

const ProductsDDL = `CREATE TABLE private_label_products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	unit_price TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME,
	updated_at DATETIME
)`

const ProductsIndexDDL = `CREATE UNIQUE INDEX ux_private_label_products_name ON private_label_products (name)`

const ClientsDDL = `CREATE TABLE private_label_clients (
	id TEXT PRIMARY KEY,
	store_id TEXT NOT NULL,
	status TEXT NOT NULL,
	contact_email TEXT NOT NULL,
	assigned_rep_id TEXT,
	recurring_enabled INTEGER NOT NULL DEFAULT 0,
	recurring_interval TEXT,
	created_at DATETIME,
	updated_at DATETIME
)`

const ClientsIndexDDL = `CREATE UNIQUE INDEX ux_private_label_clients_store ON private_label_clients (store_id)`

const LabelsDDL = `CREATE TABLE labels (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	flavor_name TEXT NOT NULL,
	product_type TEXT NOT NULL,
	current_stage TEXT NOT NULL,
	stage_history TEXT NOT NULL,
	label_images TEXT NOT NULL,
	created_at DATETIME,
	updated_at DATETIME
)`

const ClientOrdersDDL = `CREATE TABLE client_orders (
	id TEXT PRIMARY KEY,
	order_seq INTEGER NOT NULL,
	order_number TEXT NOT NULL UNIQUE,
	client_id TEXT NOT NULL,
	assigned_rep_id TEXT,
	created_by_kind TEXT,
	created_by_id TEXT,
	status TEXT NOT NULL,
	delivery_date DATETIME NOT NULL,
	production_start_date DATETIME NOT NULL,
	actual_ship_date DATETIME,
	subtotal TEXT NOT NULL,
	discount TEXT NOT NULL,
	discount_type TEXT NOT NULL,
	discount_amount TEXT NOT NULL,
	total TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	is_recurring INTEGER NOT NULL DEFAULT 0,
	parent_order_id TEXT,
	ship_asap INTEGER NOT NULL DEFAULT 0,
	tracking_number TEXT,
	emails_sent_order_created INTEGER NOT NULL DEFAULT 0,
	emails_sent_production_started INTEGER NOT NULL DEFAULT 0,
	emails_sent_seven_day_reminder INTEGER NOT NULL DEFAULT 0,
	emails_sent_ready_to_ship INTEGER NOT NULL DEFAULT 0,
	emails_sent_shipped INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME,
	updated_at DATETIME
)`

const ClientOrderItemsDDL = `CREATE TABLE client_order_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	label_id TEXT NOT NULL,
	flavor_name TEXT NOT NULL,
	product_type TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	unit_price TEXT NOT NULL,
	line_total TEXT NOT NULL,
	created_at DATETIME
)`

const OutboxEventsDDL = `CREATE TABLE outbox_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME,
	published_at DATETIME,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT
)`

const OutboxDLQDDL = `CREATE TABLE outbox_dlq (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	payload_json TEXT NOT NULL,
	error_reason TEXT NOT NULL,
	error_message TEXT,
	attempt_count INTEGER NOT NULL DEFAULT 0,
	failed_at DATETIME,
	created_at DATETIME
)`

// Directory returns the store, rep and admin tables.
func Directory() []string {
	return []string{StoresDDL, RepsDDL, AdminsDDL}
}

// PrivateLabel returns every table the private label workflow touches.
func PrivateLabel() []string {
	return append(Directory(),
		ProductsDDL, ProductsIndexDDL,
		ClientsDDL, ClientsIndexDDL,
		LabelsDDL,
		ClientOrdersDDL, ClientOrderItemsDDL,
		CountersDDL,
		OutboxEventsDDL,
	)
}
