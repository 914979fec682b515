package entities

//orm:embeddable
type OrderKey struct {
	Region string

	//orm:column name="ORDER_NO"
	Number int64
}

//orm:entity name="PURCHASE_ORDER"
//orm:secondary_table name="ORDER_NOTES" pk_join_columns.0.name="NOTE_REGION" pk_join_columns.1.name="NOTE_NO" foreign_key.name="FK_ORDER_NOTES"
type Order struct {
	//orm:embedded_id
	Key OrderKey

	//orm:column table="ORDER_NOTES" length=2000
	Note string
}
