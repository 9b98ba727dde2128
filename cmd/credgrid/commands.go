package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/credgrid/internal/core"
	"github.com/JonMunkholm/credgrid/internal/logging"
	"github.com/JonMunkholm/credgrid/internal/render"
)

func genCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gen <pattern>",
		Short: "Generate one credential PDF per organization",
		Long: `Generate one credential PDF per organization matched by pattern.

A pattern matches descriptors (.json, .yaml) or rosters (.csv, .xlsx) that
have a sibling descriptor. Quote the pattern so the shell does not expand it.

Examples:
  credgrid gen 'entities/*.json'
  credgrid gen 'entities/*.json' --layout pimaco-6180 -o out/labels
  credgrid gen 'rosters/*.xlsx' --include-missing --report out/report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.runner().Run(ctx, args[0])
			if err != nil {
				return err
			}
			return a.finish(ctx, cmd, s)
		},
	}
}

func valCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "val <pattern>",
		Short: "Load and validate rosters without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.runner().Validate(ctx, args[0])
			if err != nil {
				return err
			}
			return a.finish(ctx, cmd, s)
		},
	}
}

func csvCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "csv <pattern>",
		Short: "Export every admitted member as one CSV",
		Long: `Export every admitted member as one CSV with masked ids, checksums
and classes, in pattern match order. Writes to stdout unless --out is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			bw := bufio.NewWriter(w)
			s, err := a.runner().Export(ctx, args[0], bw)
			if err != nil {
				return err
			}
			if err := bw.Flush(); err != nil {
				return err
			}
			return a.finish(ctx, cmd, s)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the CSV to this file instead of stdout")
	return cmd
}

func qrCmd(a *app) *cobra.Command {
	var (
		logo string
		size int
	)
	cmd := &cobra.Command{
		Use:   "qr <input> <member-id>",
		Short: "Write the QR code of one member as a PNG",
		Long: `Write the QR code of one member of an organization as <member-id>.png in the
output directory. The logo defaults to the selected layout's logo.

Examples:
  credgrid qr entities/clube.json 42
  credgrid qr rosters/clube.csv 42 --logo resources/images/logo.png --size 144`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			id, err := core.ParseID(args[1])
			if err != nil {
				return fmt.Errorf("member id %q: %w", args[1], err)
			}
			in, err := core.ResolveInput(args[0])
			if err != nil {
				return err
			}
			roster, err := core.NewLoader(a.cfg.Roster, logging.WithFields(ctx, "org", in.Org.Name)).LoadInput(ctx, in)
			if err != nil {
				return err
			}
			m, ok := roster.Find(id)
			if !ok {
				return fmt.Errorf("member %d is not in the roster of %s (dropped or excluded members have no QR code)", id, in.Org.Name)
			}

			badge := render.DefaultBadge()
			if size > 0 {
				badge.Size = size
			}
			if logo == "" {
				logo = a.themeLogo()
			}
			if logo != "" {
				if badge.Logo, err = render.LoadLogo(logo); err != nil {
					return err
				}
			}

			if err := os.MkdirAll(a.cfg.Render.OutputDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(a.cfg.Render.OutputDir, strconv.Itoa(m.ID)+".png")
			f, err := os.Create(path)
			if err != nil {
				return &core.FileError{Op: "write", Path: path, Err: err}
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = &core.FileError{Op: "write", Path: path, Err: cerr}
				}
			}()

			if err := badge.WritePNG(f, nil, core.NewCodec(a.cfg.Roster).Payload(m)); err != nil {
				return err
			}
			slog.Info("qr code written", "path", path, "member", m.Name, "org", in.Org.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&logo, "logo", "", "image drawn over the middle of the code")
	cmd.Flags().IntVar(&size, "size", 0, "image size in pixels (default 72)")
	return cmd
}

// themeLogo is the selected layout's logo, or "" when the layout has none or
// the file is not there.
func (a *app) themeLogo() string {
	v, err := a.catalog.Get(a.cfg.Render.Layout)
	if err != nil || v.Theme.Logo == "" {
		return ""
	}
	path := filepath.Join(a.cfg.Render.ImagesDir, v.Theme.Logo)
	if _, err := os.Stat(path); err != nil {
		slog.Debug("layout logo not found, writing a plain code", "path", path)
		return ""
	}
	return path
}
