package align

import "github.com/f3rmion/manchu/internal/manchu"

// Index holds the token universe of one result set. It is immutable once
// built; a new result set gets a new Index.
type Index struct {
	universe []TokenID
	siblings map[int64][]TokenID
	manchu   map[int64][]Token
	latin    map[int64][]Token
}

// NewIndex tokenizes both scripts of every record and builds the universe.
// Records keep their order; within a record ids are ordered by position and
// a position present in both scripts is listed once.
func NewIndex(records []manchu.Record) *Index {
	idx := &Index{
		siblings: make(map[int64][]TokenID, len(records)),
		manchu:   make(map[int64][]Token, len(records)),
		latin:    make(map[int64][]Token, len(records)),
	}

	for _, r := range records {
		if _, seen := idx.siblings[r.ID]; seen {
			continue
		}

		m := Tokenize(r.ManchuText, r.ID)
		l := Tokenize(r.LatinText, r.ID)
		idx.manchu[r.ID] = m
		idx.latin[r.ID] = l

		n := max(len(m), len(l))
		ids := make([]TokenID, n)
		for i := range n {
			ids[i] = TokenID{RecordID: r.ID, Position: i}
		}
		idx.siblings[r.ID] = ids
		idx.universe = append(idx.universe, ids...)
	}

	return idx
}

// Universe returns every TokenID of the result set in record order.
func (idx *Index) Universe() []TokenID {
	if idx == nil {
		return nil
	}
	return idx.universe
}

// Siblings returns the TokenIDs of one record in position order, or nil if
// the record is not part of the result set.
func (idx *Index) Siblings(recordID int64) []TokenID {
	if idx == nil {
		return nil
	}
	return idx.siblings[recordID]
}

// Tokens returns the Manchu and Latin tokens of a record.
func (idx *Index) Tokens(recordID int64) (manchuTokens, latinTokens []Token) {
	if idx == nil {
		return nil, nil
	}
	return idx.manchu[recordID], idx.latin[recordID]
}

// Contains reports whether id is part of the universe.
func (idx *Index) Contains(id TokenID) bool {
	return IndexOf(id, idx.Siblings(id.RecordID)) >= 0
}

// Size returns the number of TokenIDs in the universe.
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.universe)
}

// IndexOf returns the position of id within siblings, or -1.
func IndexOf(id TokenID, siblings []TokenID) int {
	for i, s := range siblings {
		if s == id {
			return i
		}
	}
	return -1
}
