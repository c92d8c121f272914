// Package transmission implements the Transmission RPC calls Bonarr needs:
// listing torrents, reading file lists and adding magnets.
package transmission

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/shocklateboy92/bonarr/internal/identify"
	"github.com/shocklateboy92/bonarr/internal/torrent"
)

const (
	sessionIDHeader = "X-Transmission-Session-Id"
)

var (
	ErrAuthFailed = errors.New("transmission: authentication failed")
	ErrRPC        = errors.New("transmission: rpc error")
)

var summaryFields = []string{
	"id", "name", "hashString", "addedDate", "status", "percentDone",
	"downloadDir", "totalSize", "error", "errorString",
}

// Config holds the configuration for a Transmission client.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to a Transmission daemon over JSON-RPC.
type Client struct {
	config     Config
	httpClient *http.Client
	log        *slog.Logger

	mu        sync.Mutex
	sessionID string
}

// Compile-time checks
var (
	_ torrent.Source = (*Client)(nil)
	_ torrent.Adder  = (*Client)(nil)
)

// New creates a new Transmission client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: slog.With("component", "transmission"),
	}
}

// rpcTorrent is the torrent-get shape with both files and fileStats.
type rpcTorrent struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	HashString  string  `json:"hashString"`
	AddedDate   int64   `json:"addedDate"`
	Status      int     `json:"status"`
	PercentDone float64 `json:"percentDone"`
	DownloadDir string  `json:"downloadDir"`
	TotalSize   int64   `json:"totalSize"`
	Error       int     `json:"error"`
	ErrorString string  `json:"errorString"`
	Files       []struct {
		Name           string `json:"name"`
		Length         int64  `json:"length"`
		BytesCompleted int64  `json:"bytesCompleted"`
	} `json:"files"`
	FileStats []struct {
		BytesCompleted int64 `json:"bytesCompleted"`
		Wanted         bool  `json:"wanted"`
		Priority       int   `json:"priority"`
	} `json:"fileStats"`
}

func (t *rpcTorrent) summary() torrent.Summary {
	return torrent.Summary{
		ID:          t.ID,
		Name:        t.Name,
		HashString:  t.HashString,
		AddedDate:   t.AddedDate,
		Status:      torrent.Status(t.Status),
		PercentDone: t.PercentDone,
		DownloadDir: t.DownloadDir,
		TotalSize:   t.TotalSize,
		Error:       t.Error,
		ErrorString: t.ErrorString,
	}
}

// files merges files and fileStats. fileStats is authoritative for progress,
// wanted and priority; its entries line up with files by index.
func (t *rpcTorrent) files() []identify.TorrentFile {
	out := make([]identify.TorrentFile, len(t.Files))
	for i, f := range t.Files {
		file := identify.TorrentFile{
			Name:           f.Name,
			Length:         f.Length,
			BytesCompleted: f.BytesCompleted,
			Wanted:         true,
			Priority:       identify.PriorityNormal,
		}
		if i < len(t.FileStats) {
			st := t.FileStats[i]
			file.BytesCompleted = st.BytesCompleted
			file.Wanted = st.Wanted
			file.Priority = identify.PriorityFromRPC(st.Priority)
		}
		out[i] = file
	}
	return out
}

// ListTorrents returns all torrents, newest first.
func (c *Client) ListTorrents(ctx context.Context) ([]torrent.Summary, error) {
	var args struct {
		Torrents []rpcTorrent `json:"torrents"`
	}
	err := c.call(ctx, "torrent-get", map[string]interface{}{
		"fields": summaryFields,
		"format": "objects",
	}, &args)
	if err != nil {
		return nil, err
	}

	out := make([]torrent.Summary, 0, len(args.Torrents))
	for i := range args.Torrents {
		out = append(out, args.Torrents[i].summary())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedDate > out[j].AddedDate
	})
	return out, nil
}

// GetTorrentFiles returns a torrent with its files in Transmission's order.
func (c *Client) GetTorrentFiles(ctx context.Context, id int) (*torrent.Torrent, error) {
	fields := append(append([]string{}, summaryFields...), "files", "fileStats")

	var args struct {
		Torrents []rpcTorrent `json:"torrents"`
	}
	err := c.call(ctx, "torrent-get", map[string]interface{}{
		"ids":    []int{id},
		"fields": fields,
		"format": "objects",
	}, &args)
	if err != nil {
		return nil, err
	}

	if len(args.Torrents) == 0 {
		return nil, fmt.Errorf("%w: id %d", torrent.ErrTorrentNotFound, id)
	}

	t := &args.Torrents[0]
	return &torrent.Torrent{Summary: t.summary(), Files: t.files()}, nil
}

// AddTorrent adds a magnet link. downloadDir is optional.
func (c *Client) AddTorrent(ctx context.Context, magnetURI, downloadDir string) (*torrent.Added, error) {
	if _, err := torrent.ExtractInfoHash(magnetURI); err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"filename": magnetURI,
	}
	if downloadDir != "" {
		args["download-dir"] = downloadDir
	}

	var resp struct {
		Added     *torrent.Added `json:"torrent-added"`
		Duplicate *torrent.Added `json:"torrent-duplicate"`
	}
	if err := c.call(ctx, "torrent-add", args, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Added != nil:
		c.log.Info("Torrent added", "id", resp.Added.ID, "name", resp.Added.Name)
		return resp.Added, nil
	case resp.Duplicate != nil:
		resp.Duplicate.Duplicate = true
		c.log.Info("Torrent already present", "id", resp.Duplicate.ID, "name", resp.Duplicate.Name)
		return resp.Duplicate, nil
	default:
		return &torrent.Added{}, nil
	}
}

// rpcRequest represents a Transmission RPC request.
type rpcRequest struct {
	Method    string                 `json:"method"`
	Arguments map[string]interface{} `json:"arguments"`
}

// rpcResponse represents a Transmission RPC response.
type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// call performs an RPC and decodes its arguments into out. A 409 carries a new
// session id and is retried once with it.
func (c *Client) call(ctx context.Context, method string, args map[string]interface{}, out interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusConflict {
		resp.Body.Close()
		sessionID := resp.Header.Get(sessionIDHeader)
		if sessionID == "" {
			return fmt.Errorf("received 409 but no session ID in response")
		}
		c.mu.Lock()
		c.sessionID = sessionID
		c.mu.Unlock()
		c.log.Debug("Refreshed session id")

		resp, err = c.do(ctx, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	return c.parseRPCResponse(resp, out)
}

func (c *Client) do(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.mu.Lock()
	if c.sessionID != "" {
		req.Header.Set(sessionIDHeader, c.sessionID)
	}
	c.mu.Unlock()
	if c.config.Username != "" && c.config.Password != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.config.Username + ":" + c.config.Password))
		req.Header.Set("Authorization", "Basic "+auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to communicate with Transmission: %w", err)
	}
	return resp, nil
}

func (c *Client) parseRPCResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if rpcResp.Result != "success" {
		return fmt.Errorf("%w: %s", ErrRPC, rpcResp.Result)
	}

	if out != nil && len(rpcResp.Arguments) > 0 {
		if err := json.Unmarshal(rpcResp.Arguments, out); err != nil {
			return fmt.Errorf("failed to decode arguments: %w", err)
		}
	}
	return nil
}
