package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DipokalLab/intellect/internal/server"
	"github.com/DipokalLab/intellect/pkg/store"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr    string
		title   string
		watch   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document and rendered snapshots over HTTP",
		Long: `Start an HTTP host over the loaded document.

  GET /graph-data.json               the document
  GET /fields                        field names with person counts
  GET /nodes/{id}                    inspector details for one node
  GET /snapshot.svg?fields=a,b       settled SVG snapshot
  GET /snapshot.png?width=&height=   settled PNG snapshot
  GET /healthz                       load status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("watch") {
				a.cfg.Data.Watch = watch
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st := store.New()
			st.SetLoading()
			doc, src, err := a.loadDocument(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			st.SetData(doc)
			if def := a.cfg.UI.DefaultFields; len(def) > 0 {
				st.SetSelectedFields(def)
			}
			if a.cfg.Data.Watch {
				if r := a.startReloader(st); r != nil {
					defer r.Stop()
				}
			}

			opts := server.DefaultOptions()
			opts.Engine = a.engineOptions()
			opts.RequestTimeout = timeout
			if title != "" {
				opts.Title = title
			}

			w := cmd.OutOrStdout()
			banner(w, "serve")
			Info.Fprintf(w, "  Source:  %s\n", src.Location)
			Info.Fprintf(w, "  Listen:  http://%s\n", displayAddr(addr))
			Subtle.Fprintln(w, "  Ctrl+C to stop")
			return server.New(st, opts).ListenAndServe(ctx, addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	f.StringVar(&title, "title", "", "Title for rendered snapshots")
	f.BoolVarP(&watch, "watch", "w", false, "Reload when the data file changes")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
