package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("AUTHSVC_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("AUTHSVC_ADMIN_KEY", "")
		out     = envOr("AUTHSVC_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "authctl",
		Short: "CLI admin para authsvc (solo /v1/admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				return fmt.Errorf("falta API key (flag --admin-api-key o env AUTHSVC_ADMIN_KEY)")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "admin-api-url", baseURL, "URL base del Admin API (env AUTHSVC_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "admin-api-key", apiKey, "API key del Admin API (env AUTHSVC_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{BaseURL: baseURL, APIKey: apiKey, OutFormat: out, HTTP: &http.Client{Timeout: timeout}}

	tokensCmd := &cobra.Command{Use: "tokens", Short: "Operaciones sobre refresh tokens"}

	// tokens sweep: borra los refresh tokens ya expirados.
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Barrer refresh tokens expirados (cron externo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/v1/admin/tokens/sweep", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("sweep falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	// tokens revoke --token <t>
	var revokeToken string
	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revocar un refresh token puntual (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if revokeToken == "" {
				return fmt.Errorf("--token es requerido")
			}
			b, _ := json.Marshal(map[string]string{"refresh_token": revokeToken})
			status, body, err := cl.do("POST", "/v1/admin/tokens/revoke", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("revoke falló: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}
	revokeCmd.Flags().StringVar(&revokeToken, "token", "", "Refresh token a revocar")

	tokensCmd.AddCommand(sweepCmd)
	tokensCmd.AddCommand(revokeCmd)
	root.AddCommand(tokensCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
