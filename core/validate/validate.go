// Package validate checks the cross-annotation invariants of one persistent
// class and builds its resolved mapping.EntityDescriptor.
//
// Every check runs, whatever the others report: a failure is a
// *ValidationError carrying all violations grouped by Rule. Classes are
// validated in dependency order (see Order) so that supertypes, embeddables
// and map value entities are already resolved when a class needs them.
package validate

import (
	"slices"
	"strings"

	"github.com/stokaro/ormeta/config"
	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/collector"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/mapping"
)

// Input is everything needed to validate and resolve one class.
type Input struct {
	// Class is the declaration being resolved.
	Class *decl.Class
	// Records is the raw annotation sequence of Class, as returned by collector.Collect.
	Records []collector.Record
	// Ancestors are the resolved supertypes of Class, root first. The last
	// one is the direct supertype and already carries everything it inherits.
	Ancestors []*mapping.EntityDescriptor
	// Referenced holds resolved descriptors by class name. It must contain
	// at least the dependencies of Class and of its ancestors.
	Referenced map[string]*mapping.EntityDescriptor
}

type validator struct {
	in   Input
	d    *mapping.Defaulter
	err  *ValidationError
	kind mapping.DescriptorKind
	desc *mapping.EntityDescriptor

	typeRecords   []collector.Record
	memberRecords map[string][]collector.Record
}

// Validate runs every check on the class and returns its descriptor, or a
// *ValidationError listing all violations. opts may be nil for defaults.
func Validate(in Input, opts *config.ResolveOptions) (*mapping.EntityDescriptor, error) {
	v := &validator{
		in:            in,
		d:             mapping.NewDefaulter(opts),
		err:           newValidationError(in.Class.Name),
		memberRecords: map[string][]collector.Record{},
	}
	for _, rec := range in.Records {
		if rec.Element.Member == "" {
			v.typeRecords = append(v.typeRecords, rec)
		} else {
			v.memberRecords[rec.Element.Member] = append(v.memberRecords[rec.Element.Member], rec)
		}
	}

	v.checkAttributes()
	v.checkDuplicates()
	v.kind = v.persistenceKind()
	v.checkReferences()
	desc := v.resolve()

	if len(v.err.Violations) > 0 {
		return nil, v.err
	}
	return desc, nil
}

func (v *validator) className() string {
	return v.in.Class.Name
}

func (v *validator) checkAttributes() {
	for _, rec := range v.in.Records {
		element := rec.Element.String()
		for _, problem := range rec.Schema.Check(rec.Annotation) {
			v.err.add(RuleAttribute, element, "%s", problem)
		}
		v.checkColumnLike(element, rec.Schema, rec.Annotation)
	}
}

// checkColumnLike reports column_definition and options set together, on
// the annotation itself and on its nested column-like annotations.
func (v *validator) checkColumnLike(element string, s *annotation.Schema, a annotation.Annotation) {
	if s.ColumnLike && a.String("column_definition") != "" && a.String("options") != "" {
		v.err.add(RuleColumnDefinitionOptions, element, "%s sets both column_definition and options", s.Kind)
	}
	for _, def := range s.Attributes {
		ns, err := annotation.Lookup(def.Nested)
		if err != nil {
			continue
		}
		switch def.Type {
		case annotation.NestedValue:
			if n, ok := a.Nested(def.Name); ok {
				v.checkColumnLike(element, ns, n)
			}
		case annotation.NestedListValue:
			for _, n := range a.NestedList(def.Name) {
				v.checkColumnLike(element, ns, n)
			}
		}
	}
}

func (v *validator) checkDuplicates() {
	type key struct {
		element string
		kind    annotation.Kind
	}
	counts := map[key]int{}
	schemas := map[key]*annotation.Schema{}
	var order []key
	for _, rec := range v.in.Records {
		k := key{element: rec.Element.String(), kind: rec.Annotation.Kind}
		if counts[k] == 0 {
			order = append(order, k)
			schemas[k] = rec.Schema
		}
		counts[k]++
	}
	for _, k := range order {
		if counts[k] > 1 && schemas[k].Cardinality != annotation.Repeatable {
			v.err.add(RuleDuplicateAnnotation, k.element, "%s declared %d times but is not repeatable", k.kind, counts[k])
		}
	}
}

func (v *validator) persistenceKind() mapping.DescriptorKind {
	var kinds []string
	for _, rec := range v.typeRecords {
		if rec.Schema.Persistence && !slices.Contains(kinds, string(rec.Annotation.Kind)) {
			kinds = append(kinds, string(rec.Annotation.Kind))
		}
	}
	switch len(kinds) {
	case 0:
		v.err.add(RulePersistenceKind, v.className(), "no Entity, MappedSuperclass or Embeddable annotation")
		return mapping.KindEntity
	case 1:
	default:
		v.err.add(RulePersistenceKind, v.className(), "conflicting persistence annotations: %s", strings.Join(kinds, ", "))
	}
	switch annotation.Kind(kinds[0]) {
	case annotation.MappedSuperclass:
		return mapping.KindMappedSuperclass
	case annotation.Embeddable:
		return mapping.KindEmbeddable
	default:
		return mapping.KindEntity
	}
}

func (v *validator) checkReferences() {
	for _, dep := range dependencies(v.in.Class) {
		if dep.name == v.className() {
			if dep.role != roleMapValue {
				v.err.add(RuleReference, dep.element, "%s %s is the class itself", dep.role, dep.name)
			}
			continue
		}
		ref, ok := v.in.Referenced[dep.name]
		if !ok || ref == nil {
			v.err.add(RuleReference, dep.element, "%s %s is not registered", dep.role, dep.name)
			continue
		}
		switch {
		case dep.role == roleSupertype && ref.Kind == mapping.KindEmbeddable && v.kind != mapping.KindEmbeddable:
			v.err.add(RuleReference, dep.element, "supertype %s is an embeddable", dep.name)
		case dep.role == roleEmbeddable && ref.Kind != mapping.KindEmbeddable:
			v.err.add(RuleReference, dep.element, "%s is not an embeddable", dep.name)
		case dep.role == roleMapValue && ref.Kind != mapping.KindEntity:
			v.err.add(RuleReference, dep.element, "map value %s is not an entity", dep.name)
		}
	}
}

func (v *validator) resolve() *mapping.EntityDescriptor {
	class := v.in.Class
	v.desc = &mapping.EntityDescriptor{Name: class.Name, Kind: v.kind, Super: class.Super}

	var parent *mapping.EntityDescriptor
	if n := len(v.in.Ancestors); n > 0 {
		parent = v.in.Ancestors[n-1]
	}

	if v.kind == mapping.KindEntity {
		entity, _ := v.typeAnnotation(annotation.Entity)
		var table *annotation.Annotation
		if t, ok := v.typeAnnotation(annotation.Table); ok {
			table = &t
		}
		spec := v.d.PrimaryTable(class.Name, entity.String("name"), table)
		v.desc.Table = &spec
	} else {
		for _, kind := range []annotation.Kind{annotation.Table, annotation.SecondaryTable} {
			if _, ok := v.typeAnnotation(kind); ok {
				v.err.add(RulePersistenceKind, class.Name, "%s is only allowed on entities", kind)
			}
		}
	}
	if _, ok := v.typeAnnotation(annotation.EntityListeners); ok && v.kind == mapping.KindEmbeddable {
		v.err.add(RulePersistenceKind, class.Name, "EntityListeners is not allowed on embeddables")
	}

	var inheritedListeners []string
	if parent != nil {
		inheritedListeners = parent.Listeners
		for _, attr := range parent.Attributes {
			v.desc.Attributes = append(v.desc.Attributes, v.inherit(attr))
		}
	}
	for _, m := range class.Members {
		if attr, ok := v.attribute(m); ok {
			v.desc.Attributes = append(v.desc.Attributes, attr)
		}
	}

	v.desc.ID = v.primaryKey(parent)
	if v.desc.Table != nil {
		v.desc.SecondaryTables = v.secondaryTables()
		v.checkColumnTables()
	}
	v.desc.Listeners = v.listeners(inheritedListeners)
	return v.desc
}

func (v *validator) typeAnnotation(kind annotation.Kind) (annotation.Annotation, bool) {
	return find(v.typeRecords, kind)
}

func find(recs []collector.Record, kind annotation.Kind) (annotation.Annotation, bool) {
	for _, rec := range recs {
		if rec.Annotation.Kind == kind {
			return rec.Annotation, true
		}
	}
	return annotation.Annotation{}, false
}

func findAll(recs []collector.Record, kind annotation.Kind) []annotation.Annotation {
	var out []annotation.Annotation
	for _, rec := range recs {
		if rec.Annotation.Kind == kind {
			out = append(out, rec.Annotation)
		}
	}
	return out
}

func has(recs []collector.Record, kind annotation.Kind) bool {
	_, ok := find(recs, kind)
	return ok
}

func relationship(recs []collector.Record) (mapping.RelationshipKind, annotation.Annotation) {
	for _, rec := range recs {
		switch rec.Annotation.Kind {
		case annotation.OneToOne:
			return mapping.RelationOneToOne, rec.Annotation
		case annotation.ManyToOne:
			return mapping.RelationManyToOne, rec.Annotation
		case annotation.OneToMany:
			return mapping.RelationOneToMany, rec.Annotation
		case annotation.ManyToMany:
			return mapping.RelationManyToMany, rec.Annotation
		}
	}
	return mapping.RelationNone, annotation.Annotation{}
}

// ownerTable is the primary table of the class, empty for mapped
// superclasses and embeddables. Their defaulted tables are filled in by the
// inheriting or embedding entity.
func (v *validator) ownerTable() string {
	if v.desc.Table == nil {
		return ""
	}
	return v.desc.Table.Name
}

func (v *validator) targetTable(name string) string {
	if name == v.className() {
		return v.ownerTable()
	}
	if ref := v.in.Referenced[name]; ref != nil && ref.Table != nil {
		return ref.Table.Name
	}
	return ""
}

// associationTable is the table holding the join columns and map key column
// of a member:
//   - element collection: the collection table <OWNER>_<FIELD>;
//   - OneToMany with join columns or mapped_by: the target entity table;
//   - other OneToMany and ManyToMany: the join table <OWNER>_<TARGET>;
//   - everything else: the owner table.
func (v *validator) associationTable(attr mapping.AttributeSpec, joined bool) string {
	owner := v.ownerTable()
	switch {
	case attr.Collection:
		if owner == "" {
			return ""
		}
		return v.d.CollectionTable(owner, attr.Member)
	case attr.Relationship == mapping.RelationOneToMany && (joined || attr.MappedBy != ""):
		return v.targetTable(attr.TargetEntity)
	case attr.Relationship == mapping.RelationOneToMany, attr.Relationship == mapping.RelationManyToMany:
		target := v.targetTable(attr.TargetEntity)
		if owner == "" || target == "" {
			return ""
		}
		return v.d.JoinTable(owner, target)
	default:
		return owner
	}
}

func (v *validator) attribute(m decl.Member) (mapping.AttributeSpec, bool) {
	recs := v.memberRecords[m.Name]
	if has(recs, annotation.Transient) {
		return mapping.AttributeSpec{}, false
	}

	attr := mapping.AttributeSpec{
		Member:     m.Name,
		DeclaredBy: v.className(),
		Accessor:   m.Element == decl.ElementAccessor,
		Type:       m.Type,
		ID:         has(recs, annotation.Id) || has(recs, annotation.EmbeddedId),
	}
	rel, relAnn := relationship(recs)
	joinColumns := findAll(recs, annotation.JoinColumn)
	joined := len(joinColumns) > 0

	switch {
	case has(recs, annotation.EmbeddedId), has(recs, annotation.Embedded):
		attr.Embeddable = decl.ElementTypeName(m.Type)
		if ref := v.in.Referenced[attr.Embeddable]; ref != nil && attr.Embeddable != v.className() {
			attr.Columns = retable(ref.BasicColumns(), v.ownerTable())
			attr.JoinColumns = retableJoins(ref.OwnedJoinColumns(), v.ownerTable())
		}
	case rel != mapping.RelationNone:
		attr.Relationship = rel
		attr.TargetEntity = targetEntity(m)
		attr.MappedBy = relAnn.String("mapped_by")
		table := v.associationTable(attr, joined)
		switch {
		case joined:
			attr.JoinColumns = v.d.JoinColumns(m, joinColumns, table)
		case (rel == mapping.RelationManyToOne || rel == mapping.RelationOneToOne) && attr.MappedBy == "":
			attr.JoinColumns = v.d.JoinColumns(m, []annotation.Annotation{annotation.New(annotation.JoinColumn)}, table)
		}
	case has(recs, annotation.ElementCollection):
		attr.Collection = true
		attr.TargetEntity = targetEntity(m)
	default:
		var column *annotation.Annotation
		if c, ok := find(recs, annotation.Column); ok {
			column = &c
		}
		spec := v.d.Column(m, column, v.ownerTable())
		attr.Column = &spec
	}

	if raw, ok := find(recs, annotation.MapKeyColumn); ok {
		element := v.className() + "." + m.Name
		switch {
		case !attr.Collection && attr.Relationship != mapping.RelationOneToMany && attr.Relationship != mapping.RelationManyToMany:
			v.err.add(RuleMapKeyColumn, element, "MapKeyColumn requires a OneToMany, ManyToMany or ElementCollection mapping")
		case !decl.IsMap(m.Type):
			v.err.add(RuleMapKeyColumn, element, "MapKeyColumn requires a map-typed member, got %q", m.Type)
		default:
			spec := v.d.MapKeyColumn(m, raw, v.associationTable(attr, joined))
			attr.MapKey = &spec
		}
	}
	return attr, true
}

// inherit copies an ancestor attribute into the class, filling the tables
// the ancestor could not default.
func (v *validator) inherit(attr mapping.AttributeSpec) mapping.AttributeSpec {
	out := attr
	owner := v.ownerTable()
	if attr.Column != nil {
		col := *attr.Column
		fill(&col.Table, owner)
		out.Column = &col
	}
	out.Columns = retable(attr.Columns, owner)

	table := v.associationTable(attr, len(attr.JoinColumns) > 0)
	out.JoinColumns = slices.Clone(attr.JoinColumns)
	for i := range out.JoinColumns {
		fill(&out.JoinColumns[i].Table, table)
	}
	if attr.MapKey != nil {
		key := *attr.MapKey
		fill(&key.Table, table)
		out.MapKey = &key
	}
	return out
}

func fill(s *string, value string) {
	if *s == "" {
		*s = value
	}
}

func retable(cols []mapping.ColumnSpec, table string) []mapping.ColumnSpec {
	out := slices.Clone(cols)
	for i := range out {
		fill(&out[i].Table, table)
	}
	return out
}

func retableJoins(cols []mapping.JoinColumnSpec, table string) []mapping.JoinColumnSpec {
	out := slices.Clone(cols)
	for i := range out {
		fill(&out[i].Table, table)
	}
	return out
}

func (v *validator) ownAttribute(member string) (mapping.AttributeSpec, bool) {
	for _, attr := range v.desc.Attributes {
		if attr.Member == member && attr.DeclaredBy == v.className() {
			return attr, true
		}
	}
	return mapping.AttributeSpec{}, false
}

func (v *validator) primaryKey(parent *mapping.EntityDescriptor) *mapping.IDSpec {
	class := v.className()
	var ids, embeddedIDs []string
	for _, m := range v.in.Class.Members {
		recs := v.memberRecords[m.Name]
		if has(recs, annotation.Transient) {
			continue
		}
		if has(recs, annotation.Id) {
			ids = append(ids, m.Name)
		}
		if has(recs, annotation.EmbeddedId) {
			embeddedIDs = append(embeddedIDs, m.Name)
		}
	}
	declared := len(ids) + len(embeddedIDs)

	if v.kind == mapping.KindEmbeddable {
		if declared > 0 {
			v.err.add(RulePrimaryKey, class, "embeddable declares a primary key on %s", strings.Join(append(ids, embeddedIDs...), ", "))
		}
		return nil
	}

	var inherited *mapping.IDSpec
	if parent != nil {
		inherited = parent.ID
	}

	switch {
	case len(ids) > 0 && len(embeddedIDs) > 0:
		v.err.add(RulePrimaryKey, class, "both Id (%s) and EmbeddedId (%s) declared", strings.Join(ids, ", "), strings.Join(embeddedIDs, ", "))
		return nil
	case len(ids) > 1:
		v.err.add(RulePrimaryKey, class, "multiple Id members (%s), use EmbeddedId for a composite key", strings.Join(ids, ", "))
		return nil
	case len(embeddedIDs) > 1:
		v.err.add(RulePrimaryKey, class, "multiple EmbeddedId members (%s)", strings.Join(embeddedIDs, ", "))
		return nil
	case declared == 1 && inherited != nil:
		v.err.add(RulePrimaryKey, class, "redeclares the primary key inherited from %s", inherited.DeclaredBy)
		return nil
	case declared == 0 && inherited != nil:
		id := *inherited
		id.Columns = retable(inherited.Columns, v.ownerTable())
		return &id
	case declared == 0:
		if v.kind == mapping.KindEntity {
			v.err.add(RulePrimaryKey, class, "no Id or EmbeddedId declared or inherited")
		}
		return nil
	}

	if len(ids) == 1 {
		attr, _ := v.ownAttribute(ids[0])
		if attr.Column == nil {
			v.err.add(RulePrimaryKey, class+"."+ids[0], "Id requires a basic attribute")
			return nil
		}
		return &mapping.IDSpec{
			Kind:       mapping.IDSingle,
			Member:     attr.Member,
			DeclaredBy: class,
			Columns:    []mapping.ColumnSpec{*attr.Column},
		}
	}

	attr, _ := v.ownAttribute(embeddedIDs[0])
	v.embeddedRelationships(class+"."+attr.Member, attr.Embeddable, attr.Embeddable, "", map[string]bool{})
	return &mapping.IDSpec{
		Kind:       mapping.IDEmbedded,
		Member:     attr.Member,
		DeclaredBy: class,
		Embeddable: attr.Embeddable,
		Columns:    slices.Clone(attr.Columns),
	}
}

// embeddedRelationships reports every relationship mapped by the embeddable
// name or by the embeddables it embeds, at any depth. path is the member path
// from the embedded id down to name.
func (v *validator) embeddedRelationships(element, root, name, path string, visited map[string]bool) {
	ref := v.in.Referenced[name]
	if ref == nil || visited[name] {
		return
	}
	visited[name] = true
	for _, a := range ref.Attributes {
		member := a.Member
		if path != "" {
			member = path + "." + a.Member
		}
		switch {
		case a.Relationship != mapping.RelationNone:
			v.err.add(RuleEmbeddedIDRelationship, element,
				"embeddable %s used as embedded id maps relationship %s on %s", root, a.Relationship, member)
		case a.Embeddable != "":
			v.embeddedRelationships(element, root, a.Embeddable, member, visited)
		}
	}
}

func (v *validator) secondaryTables() []mapping.SecondaryTableSpec {
	class := v.className()
	primary := v.desc.Table.Name
	pk := v.desc.PrimaryKeyColumns()

	var specs []mapping.SecondaryTableSpec
	seen := map[string]bool{}
	for _, raw := range findAll(v.typeRecords, annotation.SecondaryTable) {
		spec := v.d.SecondaryTable(raw, pk)
		switch {
		case spec.Name == "":
			// reported as a missing required attribute
		case spec.Name == primary:
			v.err.add(RuleSecondaryTable, class, "secondary table %s has the name of the primary table", spec.Name)
		case seen[spec.Name]:
			v.err.add(RuleSecondaryTable, class, "secondary table %s declared more than once", spec.Name)
		}
		seen[spec.Name] = true

		declared := raw.NestedList("pk_join_columns")
		if len(declared) > 0 && len(pk) > 0 && len(declared) != len(pk) {
			v.err.add(RuleSecondaryTable, class, "secondary table %s declares %d primary key join columns, the primary key has %d",
				spec.Name, len(declared), len(pk))
		}
		for _, jc := range declared {
			if ref := jc.String("referenced_column_name"); ref != "" && !hasColumn(pk, ref) {
				v.err.add(RuleSecondaryTable, class, "secondary table %s joins on %s, which is not a primary key column", spec.Name, ref)
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

func hasColumn(cols []mapping.ColumnSpec, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// checkColumnTables verifies that the columns declared by the class itself
// live in the primary table or one of its secondary tables.
func (v *validator) checkColumnTables() {
	tables := []string{v.desc.Table.Name}
	for _, st := range v.desc.SecondaryTables {
		tables = append(tables, st.Name)
	}

	for _, attr := range v.desc.Attributes {
		if attr.DeclaredBy != v.className() {
			continue
		}
		element := v.className() + "." + attr.Member
		if attr.Column != nil && !slices.Contains(tables, attr.Column.Table) {
			v.err.add(RuleColumnTable, element, "column %s is mapped to unknown table %s", attr.Column.Name, attr.Column.Table)
		}
		if attr.Relationship != mapping.RelationManyToOne && attr.Relationship != mapping.RelationOneToOne {
			continue
		}
		for _, jc := range attr.JoinColumns {
			if !slices.Contains(tables, jc.Table) {
				v.err.add(RuleColumnTable, element, "join column %s is mapped to unknown table %s", jc.Name, jc.Table)
			}
		}
	}
}

func (v *validator) listeners(inherited []string) []string {
	out := slices.Clone(inherited)
	ann, ok := v.typeAnnotation(annotation.EntityListeners)
	if !ok {
		return out
	}
	for _, listener := range ann.Strings("value") {
		switch {
		case strings.TrimSpace(listener) == "":
			v.err.add(RuleEntityListeners, v.className(), "blank listener class")
		case slices.Contains(out, listener):
			v.err.add(RuleEntityListeners, v.className(), "listener %s registered more than once", listener)
		default:
			out = append(out, listener)
		}
	}
	return out
}
