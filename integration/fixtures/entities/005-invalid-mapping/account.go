package entities

//orm:embeddable
type AccountKey struct {
	Bank   string
	Number string
}

//orm:entity
type Account struct {
	//orm:id
	ID int64

	//orm:embedded_id
	Key AccountKey

	//orm:column column_definition="TEXT" options="COLLATE C"
	Owner string

	//orm:one_to_many
	//orm:map_key_column
	Entries []Entry
}

//orm:entity
type Entry struct {
	//orm:id
	ID int64
}
