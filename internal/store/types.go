package store

// Account is one allocated slot account.
type Account struct {
	Address    string `json:"address"`
	ProgramID  string `json:"program_id"`
	Owner      string `json:"owner"`
	Payer      string `json:"payer"`
	Space      int    `json:"space"`
	Data       []byte `json:"-"`
	CreatedSeq int64  `json:"created_seq"`
	UpdatedSeq int64  `json:"updated_seq"`
}

// Invocation is one committed mutating request.
type Invocation struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Owner   string `json:"owner"`
	Address string `json:"address"`
	Args    string `json:"args"`    // canonical JSON
	Data    []byte `json:"data"`    // signed instruction data, exact
	Records int    `json:"records"` // slot length after the request
}
