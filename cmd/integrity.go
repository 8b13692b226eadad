package cmd

import (
	"context"

	"cloud-storage/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the storage bucket",
	Long:  `Checks that the bucket has the required folder markers and files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// filesCmd represents the integrity files command
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Check required files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, filesCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folder markers")
}

func runIntegrityChecks(ctx context.Context, runStructure, runFiles bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	logg := rt.logger
	defer func() { _ = logg.Sync() }()

	svc := integrity.NewService(rt.objects, rt.cfg.Storage.Bucket, integrity.Requirements{
		Folders: rt.cfg.Storage.RequiredFolders,
		Files:   rt.cfg.Storage.RequiredFiles,
	}, logg)

	if runStructure {
		logg.Info("Checking folder structure...", zap.String("bucket", rt.cfg.Storage.Bucket))
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return err
		}

		switch {
		case len(missing) == 0:
			logg.Info("Structure is intact.")
		case fixFlag:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			logg.Info("Fixing missing folders...")
			if err := svc.FixStructure(ctx, missing); err != nil {
				return err
			}
			logg.Info("Structure fixed successfully.")
		default:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			logg.Info("Run 'integrity structure --fix' to create missing folders.")
		}
	}

	if runFiles {
		logg.Info("Checking required files...")
		missing, err := svc.CheckFiles(ctx)
		if err != nil {
			return err
		}

		if len(missing) == 0 {
			logg.Info("Required files are present.")
		} else {
			logg.Warn("Missing files detected", zap.Strings("missing", missing))
		}
	}

	return nil
}
