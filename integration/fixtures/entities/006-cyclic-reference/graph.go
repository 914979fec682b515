package entities

//orm:entity
type Author struct {
	//orm:id
	ID int64

	//orm:one_to_many
	//orm:map_key_column
	Books map[string]*Book
}

//orm:entity
type Book struct {
	//orm:id
	ID int64

	//orm:many_to_many
	//orm:map_key_column
	Authors map[string]*Author
}
