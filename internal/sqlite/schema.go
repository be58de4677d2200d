package sqlite

// Schema DDL for all tables. The database is rebuilt from the JSONL files on
// every Attach, so the schema carries no migrations.
const (
	createProjects = `CREATE TABLE projects (
    project_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE users (
    user_id TEXT PRIMARY KEY,
    login TEXT NOT NULL,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTickets = `CREATE TABLE tickets (
    ticket_id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    due_date TEXT,
    done INTEGER NOT NULL DEFAULT 0,
    project_id TEXT,
    assigned_to TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createLabels = `CREATE TABLE labels (
    label_id TEXT PRIMARY KEY,
    value TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTicketLabels = `CREATE TABLE ticket_labels (
    ticket_id TEXT NOT NULL,
    label_id TEXT NOT NULL,
    PRIMARY KEY (ticket_id, label_id)
);`
)

// Index DDL for common queries.
const (
	idxUsersLogin        = `CREATE UNIQUE INDEX idx_users_login ON users(login);`
	idxTicketsProject    = `CREATE INDEX idx_tickets_project ON tickets(project_id);`
	idxTicketsAssignedTo = `CREATE INDEX idx_tickets_assigned_to ON tickets(assigned_to);`
	idxTicketsDueDate    = `CREATE INDEX idx_tickets_due_date ON tickets(due_date);`
	idxTicketLabelsLabel = `CREATE INDEX idx_ticket_labels_label ON ticket_labels(label_id);`
	idxLabelsValue       = `CREATE INDEX idx_labels_value ON labels(value);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createProjects,
	createUsers,
	createTickets,
	createLabels,
	createTicketLabels,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxUsersLogin,
	idxTicketsProject,
	idxTicketsAssignedTo,
	idxTicketsDueDate,
	idxTicketLabelsLabel,
	idxLabelsValue,
}
