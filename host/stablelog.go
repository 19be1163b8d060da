package host

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Canonical log lines as tooling expects to parse them. Every helper is
// a silent no-op for a nil collector.

func ProgramInvoke(lc LogCollector, programID solana.PublicKey, height uint64) {
	if lc == nil {
		return
	}
	lc.Log(fmt.Sprintf("Program %s invoke [%d]", programID, height))
}

func ProgramLog(lc LogCollector, message string) {
	if lc == nil {
		return
	}
	lc.Log("Program log: " + message)
}

func ProgramData(lc LogCollector, fields ...[]byte) {
	if lc == nil {
		return
	}
	encoded := make([]string, len(fields))
	for i, f := range fields {
		encoded[i] = base64.StdEncoding.EncodeToString(f)
	}
	lc.Log("Program data: " + strings.Join(encoded, " "))
}

func ProgramSuccess(lc LogCollector, programID solana.PublicKey) {
	if lc == nil {
		return
	}
	lc.Log(fmt.Sprintf("Program %s success", programID))
}

func ProgramFailure(lc LogCollector, programID solana.PublicKey, err error) {
	if lc == nil {
		return
	}
	lc.Log(fmt.Sprintf("Program %s failed: %v", programID, err))
}
