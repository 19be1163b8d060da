// Demo of driving a native guest program through the syscall stubs: an
// escrow-style program that checks the clock, releases vault funds via
// a signed system transfer, and reports through return data.
package main

import (
	"bytes"
	"fmt"
	"os"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	trident "github.com/Ackee-Blockchain/trident-syscall-stubs"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/hostsim"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

const (
	VaultSeed     = "vault"
	VaultBalance  = 5_000_000
	ReleaseAmount = 1_500_000
)

func main() {
	var (
		computeBudget uint64
		printDebug    bool
		recordFile    string
	)

	rootCmd := &cobra.Command{
		Use:   "trident-demo",
		Short: "Run the escrow release scenario against the simulated host",
		Run: func(cmd *cobra.Command, args []string) {
			if err := run(computeBudget, printDebug, recordFile); err != nil {
				fmt.Printf("demo failed: %v\n", err)
				os.Exit(1)
			}
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().Uint64Var(&computeBudget, "compute-budget", hostsim.DefaultConfig().ComputeBudget, "Compute units available to the transaction")
	rootCmd.Flags().BoolVar(&printDebug, "print-debug", false, "Mirror collected logs to stdout as they arrive")
	rootCmd.Flags().StringVar(&recordFile, "record", "", "Write the execution record to this file (msgpack)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(computeBudget uint64, printDebug bool, recordFile string) error {
	config := hostsim.DefaultConfig()
	config.ComputeBudget = computeBudget
	config.PrintDebug = printDebug

	sim := hostsim.NewSimulator(config)
	trident.Install()

	escrowID := demoKey(0xE5)
	authority := demoKey(0xA1)
	recipient := demoKey(0x4C)

	vault, bump, err := solana.FindProgramAddress([][]byte{[]byte(VaultSeed)}, escrowID)
	if err != nil {
		return fmt.Errorf("derive vault address: %w", err)
	}

	sim.RegisterProgram(escrowID, releaseEscrow(bump))
	sim.FundAccount(vault, VaultBalance)
	sim.FundAccount(authority, 1_000_000)
	sim.SetClock(types.Clock{Slot: 4200, EpochStartTimestamp: 1_700_000_000, Epoch: 9, LeaderScheduleEpoch: 10, UnixTimestamp: 1_700_000_420})

	ix := types.NewInstruction(
		escrowID,
		nil,
		solana.Meta(authority).WRITE().SIGNER(),
		solana.Meta(vault).WRITE(),
		solana.Meta(recipient).WRITE(),
		solana.Meta(solana.SystemProgramID),
	)
	result := sim.RunTransaction(hostsim.Transaction{
		Instructions: []types.Instruction{ix},
		Signers:      []solana.PublicKey{authority},
	})

	for _, line := range result.Logs {
		fmt.Println(line)
	}
	if result.Err != nil {
		return result.Err
	}

	fmt.Printf("compute units consumed: %d\n", result.UnitsConsumed)
	fmt.Printf("return data from %s: %x\n", result.ReturnDataProgram, result.ReturnData)
	if vaultAccount, ok := sim.GetAccount(vault); ok {
		fmt.Printf("vault balance after release: %d\n", vaultAccount.Lamports)
	}
	if recipientAccount, ok := sim.GetAccount(recipient); ok {
		fmt.Printf("recipient balance after release: %d\n", recipientAccount.Lamports)
	}

	if recordFile != "" {
		record := sim.Record(result, escrowID, vault, recipient)
		raw, err := record.Marshal()
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if err := os.WriteFile(recordFile, raw, 0o644); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		fmt.Printf("wrote execution record to %s\n", recordFile)
	}
	return nil
}

// releaseEscrow returns the guest program. It expects the accounts
// [authority, vault, recipient, system program] and releases a fixed
// amount from the vault, signing as the program's derived address.
func releaseEscrow(bump uint8) hostsim.ProgramFunc {
	return func(programID solana.PublicKey, accounts []*types.AccountView, data []byte) error {
		if len(accounts) < 4 {
			return types.ErrNotEnoughAccountKeys
		}
		authority, vault, recipient := accounts[0], accounts[1], accounts[2]
		if !authority.IsSigner {
			return types.ErrMissingRequiredSignatures
		}

		clock, err := trident.GetClock()
		if err != nil {
			return err
		}
		trident.Log(fmt.Sprintf("escrow: release requested at slot %d", clock.Slot))

		transfer := hostsim.NewTransferInstruction(vault.Key, recipient.Key, ReleaseAmount)
		seeds := [][][]byte{{[]byte(VaultSeed), {bump}}}
		if err := trident.InvokeSigned(transfer, accounts, seeds); err != nil {
			return err
		}

		trident.Log("escrow: release complete")
		payload := new(bytes.Buffer)
		enc := bin.NewBinEncoder(payload)
		if err := enc.WriteUint64(ReleaseAmount, bin.LE); err != nil {
			return types.NewBorshIoError(err.Error())
		}
		trident.SetReturnData(payload.Bytes())
		return nil
	}
}

// demoKey builds a deterministic address from a repeated tag byte.
func demoKey(tag byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = tag
	}
	return solana.PublicKeyFromBytes(raw[:])
}
