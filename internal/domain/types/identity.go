package types

// Identity is the locally persisted identity record.
type Identity struct {
	RollNumber RollNumber `json:"roll_number"`
}
