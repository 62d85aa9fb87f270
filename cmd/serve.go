package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"dgamaster/config"
	"dgamaster/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort   int
	serveInput  string
	servePlant  string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start local read-only web UI for the diagnosed master workbook",
	Long: `Start a local HTTP server with a summary page per plant and a detail page
per transformer.

The UI is read-only. It shows the "Resumen" and "UltimaPorTrafo" sheets of the
master workbook and picks up a new "dgamaster diagnose" run on the next request.`,
	Example: `
  # Start local server on default port
  dgamaster serve

  # Start on another port with one plant preselected
  dgamaster serve --port 9090 --plant Monterrey --input ./out/trafos_maestro_tabla.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyPathOverrides(map[string]string{config.KeyOutputFile: serveInput})

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		addr := fmt.Sprintf(":%d", servePort)
		server := &http.Server{
			Addr:    addr,
			Handler: withServePlantRedirect(web.NewServer(cfg.Paths.OutputFile, logger), servePlant),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", servePort)
		logger.Info("web ui started", zap.String("addr", addr), zap.String("workbook", cfg.Paths.OutputFile))
		fmt.Printf("Listening on %s\n", listenURL)
		if !serveNoOpen {
			if openErr := openURLInBrowser(listenURL); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server")
	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "Master workbook path (overrides paths.output_file)")
	serveCmd.Flags().StringVar(&servePlant, "plant", "", "Plant preselected on the summary page")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

// withServePlantRedirect sends a bare "/" to the summary filtered by plant.
func withServePlantRedirect(next http.Handler, plant string) http.Handler {
	plant = strings.TrimSpace(plant)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/" && r.URL.RawQuery == "" && plant != "" {
			http.Redirect(w, r, "/?plant="+url.QueryEscape(plant), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
