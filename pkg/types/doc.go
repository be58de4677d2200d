// Package types defines the Store and Table interfaces, the tracker entities
// (Project, Ticket, Label, User), the Ticket/Label association, merge-patch
// documents, and the standard error values shared by every backend.
//
// Entities are always handled through pointers. A Ticket and a Label keep
// each other in their association sets; use the Add/Remove/Set methods on
// either side so that both sides change together.
package types
