package validate

// Rule names one cross-reference check. Violations are grouped by rule.
type Rule string

const (
	// RulePersistenceKind: exactly one of Entity, MappedSuperclass or
	// Embeddable, and entity-only annotations only on entities.
	RulePersistenceKind Rule = "persistence-kind"
	// RulePrimaryKey: an entity has exactly one of Id or EmbeddedId, declared
	// or inherited, never both.
	RulePrimaryKey Rule = "primary-key"
	// RuleDuplicateAnnotation: non-repeatable kinds appear at most once per element.
	RuleDuplicateAnnotation Rule = "duplicate-annotation"
	// RuleEmbeddedIDRelationship: an embeddable used as embedded id has no
	// relationship mappings.
	RuleEmbeddedIDRelationship Rule = "embedded-id-relationship"
	// RuleColumnDefinitionOptions: column_definition and options are exclusive.
	RuleColumnDefinitionOptions Rule = "column-definition-options"
	// RuleMapKeyColumn: map key columns only on map-valued associations.
	RuleMapKeyColumn Rule = "map-key-column"
	// RuleSecondaryTable: secondary table names and their join columns.
	RuleSecondaryTable Rule = "secondary-table"
	// RuleColumnTable: a column table names the primary or a secondary table.
	RuleColumnTable Rule = "column-table"
	// RuleAttribute: attribute bags match the attribute schema.
	RuleAttribute Rule = "attribute"
	// RuleReference: referenced classes are registered and of the right kind.
	RuleReference Rule = "reference"
	// RuleEntityListeners: listener classes are neither blank nor repeated.
	RuleEntityListeners Rule = "entity-listeners"
)
