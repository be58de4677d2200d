package types

// Standard table names. Each names a SQLite table and the JSONL file that
// backs it.
const (
	ProjectsTable     = "projects"
	TicketsTable      = "tickets"
	LabelsTable       = "labels"
	UsersTable        = "users"
	TicketLabelsTable = "ticket_labels"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	ProjectsTable,
	TicketsTable,
	LabelsTable,
	UsersTable,
	TicketLabelsTable,
}
