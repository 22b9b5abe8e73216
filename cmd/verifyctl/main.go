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
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
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

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("SOCIALVERIFY_URL", "http://localhost:8080")
		out     = envOr("SOCIALVERIFY_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "verifyctl",
		Short: "CLI para el dispatcher de códigos de verificación",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env SOCIALVERIFY_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: &http.Client{Timeout: timeout}}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Chequea readiness del servicio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl.OutFormat = out
			cl.BaseURL = baseURL
			status, body, err := cl.do("GET", "/readyz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	var (
		sendUserID   string
		sendPlatform string
		sendUsername string
	)
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Dispara el envío de un código de verificación",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl.OutFormat = out
			cl.BaseURL = baseURL
			if sendUserID == "" {
				return fmt.Errorf("falta --user-id")
			}
			payload, _ := json.Marshal(map[string]string{
				"userId":              sendUserID,
				"socialMedia":         sendPlatform,
				"socialMediaUsername": sendUsername,
			})
			status, body, err := cl.do("POST", "/v1/verification/send", payload)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("send fallo: status=%d", status)
			}
			return nil
		},
	}
	sendCmd.Flags().StringVar(&sendUserID, "user-id", "", "ID de cuenta del creador (requerido)")
	sendCmd.Flags().StringVar(&sendPlatform, "social-media", "", "Override de plataforma (opcional)")
	sendCmd.Flags().StringVar(&sendUsername, "username", "", "Override de username (opcional)")

	root.AddCommand(pingCmd, sendCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
