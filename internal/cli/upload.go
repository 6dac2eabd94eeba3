package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/logger"
	"github.com/rohits-web03/modvault/internal/utils"
)

// uploadCmd streams a file to a modvault server
var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Submit a modlist or mod archive to a modvault server",
	Long: `Hashes FILE locally and submits it to the server. Files ending in
.wabbajack are submitted as modlists, everything else as mods. The hash is
sent as If-None-Match so the server can answer 304 without a transfer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		res, err := upload(cmd.Context(), http.DefaultClient, server, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringP("server", "s", "http://localhost:8080", "Base URL of the modvault server")
}

type uploadResult string

const (
	uploaded       uploadResult = "Upload successful"
	alreadyPresent uploadResult = "File already exists"
)

func submitURL(server string, kind catalog.Kind, filename string) string {
	return strings.TrimRight(server, "/") + "/api/v1/submit/" + string(kind) + "/" + url.PathEscape(filename)
}

func upload(ctx context.Context, client *http.Client, server, path string) (uploadResult, error) {
	name := filepath.Base(path)
	kind := catalog.KindOf(name)

	log := logger.Log.With("file", name, "kind", kind)
	log.Infow("Computing hash")
	sum, size, err := hash.File(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	target := submitURL(server, kind, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, f)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("If-None-Match", utils.ETag(sum))

	log.Infow("Uploading", "url", target, "hash", sum, "size", size)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return uploaded, nil
	case http.StatusNotModified:
		return alreadyPresent, nil
	default:
		return "", fmt.Errorf("upload failed with %s: %s", resp.Status, responseMessage(resp.Body))
	}
}

// responseMessage pulls the message out of a JSON error payload, falling
// back to the raw body.
func responseMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return err.Error()
	}
	var p utils.Payload
	if json.Unmarshal(data, &p) == nil && p.Message != "" {
		return p.Message
	}
	return strings.TrimSpace(string(data))
}
