package expand

import "strings"

// Reference is an external fact: Referrer points at Referent, which may be any
// member of a chained list.
type Reference struct {
	Referrer string
	Referent string
}

// Record is one membership fact: Referrer is related by Relation to Member of
// Collection. It mirrors a quad with Relation as predicate and Collection as
// graph.
type Record struct {
	Relation   string
	Referrer   string
	Collection string
	Member     string
}

// NewRecord creates a Record.
func NewRecord(relation, referrer, collection, member string) Record {
	return Record{
		Relation:   relation,
		Referrer:   referrer,
		Collection: collection,
		Member:     member,
	}
}

// Fields returns the record in output column order.
func (r Record) Fields() [4]string {
	return [4]string{r.Relation, r.Referrer, r.Collection, r.Member}
}

// String returns the tab-separated output line without the trailing newline.
func (r Record) String() string {
	f := r.Fields()
	return strings.Join(f[:], "\t")
}

// IsValid checks that no field is empty.
func (r Record) IsValid() bool {
	return r.Relation != "" && r.Referrer != "" && r.Collection != "" && r.Member != ""
}
