package entities

// Address is declared in orm.yaml.
type Address struct {
	Street string
	City   string
}

//orm:entity
type Customer struct {
	//orm:id
	ID int64

	//orm:embedded
	Home Address
}
