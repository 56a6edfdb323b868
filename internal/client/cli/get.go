package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (a *App) getCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Download a stored file",
		Long: "Download a stored file. Without -o the file is saved under its original " +
			"name in the current directory and an existing file is never overwritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			ctx := cmd.Context()

			if output == "-" {
				_, err := a.client.Download(ctx, key, cmd.OutOrStdout())
				return err
			}

			path, explicit := output, output != ""
			if !explicit {
				path = a.localName(ctx, key)
			}

			n, err := a.download(ctx, key, path, explicit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%d bytes)\n", path, n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `destination path, "-" for stdout`)
	return cmd
}

// localName picks a safe file name in the current directory: the base of
// the original name, or the key when there is no usable record.
func (a *App) localName(ctx context.Context, key string) string {
	info, err := a.client.Info(ctx, key)
	if err != nil {
		return filepath.Base(key)
	}
	name := filepath.Base(filepath.Clean("/" + filepath.FromSlash(info.OriginalName)))
	if name == "." || name == string(filepath.Separator) {
		return filepath.Base(key)
	}
	return name
}

func (a *App) download(ctx context.Context, key, path string, overwrite bool) (int64, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return 0, err
	}

	d, err := a.client.Download(ctx, key, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d.Size, nil
}
