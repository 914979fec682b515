package entities

//orm:entity
type Image struct {
	//orm:id
	ID int64

	URL string
}

//orm:entity
type Product struct {
	//orm:id
	ID int64

	//orm:one_to_many
	//orm:map_key_column
	Images map[string]*Image

	//orm:element_collection
	//orm:map_key_column name="TAG_NAME" length=40
	Tags map[string]string

	//orm:many_to_one
	Cover *Image
}
