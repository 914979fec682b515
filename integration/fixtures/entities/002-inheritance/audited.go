package entities

import "time"

//orm:mapped_superclass
//orm:entity_listeners value="AuditListener"
type Audited struct {
	//orm:id
	ID int64

	CreatedAt time.Time
}
