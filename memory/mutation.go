package memrepo

import "github.com/meowmeowcode/orlok"

// Mutation is one extra write produced by a side-effect hook. Hooks let
// a repository span more than one collection while presenting a single
// entity; their mutations run in declaration order inside the same
// atomic unit as the primary write.
type Mutation interface {
	apply(data map[string][]*orlok.Record) error
}

// Insert appends a record to a collection.
type Insert struct {
	Collection string
	Record     *orlok.Record
}

func (m Insert) apply(data map[string][]*orlok.Record) error {
	data[m.Collection] = append(data[m.Collection], m.Record.Clone())
	return nil
}

// Update overwrites every record of a collection matching the filter.
type Update struct {
	Collection string
	Where      orlok.Filter
	Record     *orlok.Record
}

func (m Update) apply(data map[string][]*orlok.Record) error {
	records := data[m.Collection]
	for i, rec := range records {
		ok, err := matches(rec, m.Where)
		if err != nil {
			return err
		}
		if ok {
			records[i] = m.Record.Clone()
		}
	}
	return nil
}

// Delete removes every record of a collection matching the filter.
type Delete struct {
	Collection string
	Where      orlok.Filter
}

func (m Delete) apply(data map[string][]*orlok.Record) error {
	records := data[m.Collection]
	kept := records[:0:0]
	for _, rec := range records {
		ok, err := matches(rec, m.Where)
		if err != nil {
			return err
		}
		if !ok {
			kept = append(kept, rec)
		}
	}
	data[m.Collection] = kept
	return nil
}
