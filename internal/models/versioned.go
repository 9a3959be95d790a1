package models

// Versioned adds optimistic-lock helpers. Embed it anonymously.
// The version lives in the store row, not in the JSON document.
type Versioned struct {
	RowVersion int64 `json:"-"`
}

func (v *Versioned) GetRowVersion() int64  { return v.RowVersion }
func (v *Versioned) SetRowVersion(n int64) { v.RowVersion = n }
