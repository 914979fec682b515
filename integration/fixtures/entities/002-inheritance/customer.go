package entities

//orm:entity
//orm:entity_listeners value="MailListener"
type Customer struct {
	Audited

	//orm:column nullable=false
	Email string
}

//orm:entity
type Supplier struct {
	Audited

	//orm:transient
	Cache map[string]string
}
