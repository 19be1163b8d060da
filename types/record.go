package types

import (
	"github.com/shamaton/msgpack/v2"
)

// AccountRecord is the committed state of one account after a run.
type AccountRecord struct {
	Address  string `msgpack:"address"`
	Lamports uint64 `msgpack:"lamports"`
	Owner    string `msgpack:"owner"`
	Data     []byte `msgpack:"data"`
}

// ExecutionRecord captures one transaction run in a compact binary form,
// suitable for fixtures and offline inspection.
type ExecutionRecord struct {
	Program           string          `msgpack:"program"`
	Logs              []string        `msgpack:"logs"`
	UnitsConsumed     uint64          `msgpack:"units_consumed"`
	ReturnDataProgram string          `msgpack:"return_data_program"`
	ReturnData        []byte          `msgpack:"return_data"`
	Accounts          []AccountRecord `msgpack:"accounts"`
	Err               string          `msgpack:"err"`
}

func (r ExecutionRecord) Marshal() ([]byte, error) {
	return msgpack.Marshal(r)
}

// UnmarshalExecutionRecord decodes a record produced by Marshal.
func UnmarshalExecutionRecord(data []byte) (ExecutionRecord, error) {
	var r ExecutionRecord
	err := msgpack.Unmarshal(data, &r)
	return r, err
}
