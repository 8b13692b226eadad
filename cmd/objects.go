package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"cloud-storage/feature/objects"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	bucketFlag string
	keepFlag   bool
	dirFlag    string
)

// objectCmd groups the single-object commands.
var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Inspect, read and upload objects",
}

var existsCmd = &cobra.Command{
	Use:   "exists <prefix>",
	Short: "Report whether any object key starts with prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		ok, err := rt.objects.KeyPathAvailable(cmd.Context(), bucketFlag, args[0])
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <key>",
	Short: "List the objects a key resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		match, err := rt.objects.FileObject(cmd.Context(), args[0], bucketFlag)
		if err != nil {
			return err
		}
		if _, single := match.(objects.Single); single {
			rt.logger.Debug("Key resolved to a single object", zap.String("key", args[0]))
		}
		for _, obj := range match.All() {
			fmt.Printf("%10d  %s  %s\n", obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"), obj.Key)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Write the body of a single object to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		match, err := rt.objects.FileObject(cmd.Context(), args[0], bucketFlag)
		if err != nil {
			return err
		}
		single, ok := match.(objects.Single)
		if !ok {
			return fmt.Errorf("key %q matched %d objects, expected exactly one", args[0], len(match.All()))
		}
		content, err := rt.objects.ReadObject(cmd.Context(), single.Object, false, false)
		if err != nil {
			return err
		}
		raw, _ := content.(objects.Raw)
		_, err = os.Stdout.Write(raw)
		return err
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <folder>...",
	Short: "Create folder markers that do not exist yet",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		return rt.objects.CreateFolders(cmd.Context(), bucketFlag, args...)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> <key>",
	Short: "Upload a local file; the local copy is removed unless --keep is set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		return rt.objects.UploadFile(cmd.Context(), args[0], args[1], bucketFlag, !keepFlag)
	},
}

var readCSVCmd = &cobra.Command{
	Use:   "read-csv <key>",
	Short: "Parse a CSV object and print it back normalized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		t, err := rt.objects.ReadCSV(cmd.Context(), args[0], bucketFlag)
		if err != nil {
			return err
		}
		defer t.Release()
		rt.logger.Info("Parsed table", zap.Int("rows", t.NumRows()), zap.Strings("columns", t.Columns()))
		return t.WriteCSV(os.Stdout)
	},
}

var modelCmd = &cobra.Command{
	Use:   "model <name>",
	Short: "Load a stored model and print it as JSON",
	Long: `Loads a model saved as a map with basic values. Keys ending in .cbor are
decoded as CBOR, anything else as gob.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		var model map[string]any
		if err := rt.objects.LoadModel(cmd.Context(), args[0], bucketFlag, dirFlag, &model); err != nil {
			return err
		}
		out, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(objectCmd)
	objectCmd.AddCommand(existsCmd, lsCmd, getCmd, mkdirCmd, uploadCmd, readCSVCmd, modelCmd)

	objectCmd.PersistentFlags().StringVarP(&bucketFlag, "bucket", "b", "", "Bucket name (defaults to storage.bucket)")
	uploadCmd.Flags().BoolVar(&keepFlag, "keep", false, "Keep the local file after upload")
	modelCmd.Flags().StringVar(&dirFlag, "dir", "", "Directory prefix of the model key (none by default)")
}
