package main

import (
	"context"
	"fmt"
	"time"

	"github.com/registradesk/registra/internal/config"
	"github.com/registradesk/registra/internal/logger"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/registry"
	"github.com/registradesk/registra/internal/tui/intake"
	"github.com/spf13/cobra"
)

var (
	intakeType     string
	intakeRecordID string
	intakeRegistry string
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Enter or edit a registry record through the intake wizard",
	Long: `Enter or edit a registry record through the intake wizard.

The wizard walks the record's field catalog step by step with validation on
every transition. While you type the identity fields it checks the registry
for existing records in the background: similar records produce an advisory
warning, an exact match blocks saving. Closing with unsaved changes always
asks first.

Add a new record:
  registra intake --type death
  registra intake --type marriage

Edit an existing record:
  registra intake --type death --id <record-id>`,
	RunE: runIntake,
}

func init() {
	intakeCmd.Flags().StringVarP(&intakeType, "type", "t", "", "record type: death or marriage (required)")
	intakeCmd.Flags().StringVarP(&intakeRecordID, "id", "i", "", "record ID to edit (omit to add a new record)")
	intakeCmd.Flags().StringVarP(&intakeRegistry, "registry", "r", "", "registry API base URL (overrides config)")
	_ = intakeCmd.MarkFlagRequired("type")
}

func runIntake(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !config.Exists() {
		logger.Debug("No config file found, using defaults (run 'registra setup' to create one)")
	}

	t := record.Type(intakeType)
	if !t.Valid() {
		return fmt.Errorf("unknown record type %q (want death or marriage)", intakeType)
	}

	baseURL := cfg.RegistryURL
	if intakeRegistry != "" {
		baseURL = intakeRegistry
	}
	client := registry.NewClient(baseURL)

	opts := intake.Options{
		Type:     t,
		Mode:     intake.ModeAdd,
		Registry: client,
		Prober:   client,
		Debounce: time.Duration(cfg.DebounceMS) * time.Millisecond,
	}

	if intakeRecordID != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		existing, err := client.GetRecord(ctx, intakeRecordID)
		cancel()
		if err != nil {
			return fmt.Errorf("fetching record %s: %w", intakeRecordID, err)
		}
		if existing.Type != t {
			return fmt.Errorf("record %s is a %s record, not %s", intakeRecordID, existing.Type, t)
		}
		opts.Mode = intake.ModeEdit
		opts.Existing = existing
	}

	logger.Info("Starting intake wizard: type=%s mode=%d registry=%s", t, opts.Mode, baseURL)

	saved, err := intake.Run(opts)
	if err != nil {
		return err
	}

	if saved == nil {
		fmt.Println("No record saved.")
		return nil
	}
	fmt.Printf("Saved %s record %s (Registry No. %s)\n", saved.Type, saved.ID, saved.RegistryNo)
	return nil
}
