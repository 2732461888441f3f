// Package bridge carries host-runtime calls to the plugin over a stream of
// newline-delimited JSON requests.
//
// Request:  {"id": 1, "method": "add_entry", "args": ["name", "command"]}
// Response: {"id": 1, "result": {...}} or {"id": 1, "error": "message"}
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"deckclip/plugin"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// ErrUnknownMethod is returned by Dispatch for names it does not route.
var ErrUnknownMethod = errors.New("unknown method")

const maxLine = 1 << 20

type response struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type Server struct {
	plugin *plugin.Plugin
}

func NewServer(p *plugin.Plugin) *Server {
	return &Server{plugin: p}
}

// Serve answers one response line per request line until r is exhausted, ctx
// is cancelled or the uninstall hook has run. A line over maxLine bytes is
// skipped up to its newline and answered with an error.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	enc := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, tooLong, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read request: %w", err)
		}
		eof := err != nil

		var method string
		switch {
		case tooLong:
			log.WithField("limit", maxLine).Warn("request too long")
			err = enc.Encode(response{ID: json.RawMessage("null"), Error: "request too long"})
		case len(line) > 0:
			var resp response
			method, resp = s.handle(string(line))
			err = enc.Encode(resp)
		default:
			err = nil
		}
		if err != nil {
			return fmt.Errorf("write response: %w", err)
		}

		if eof || method == "_uninstall" || method == "on_uninstall" {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. Once a line passes
// maxLine its bytes are discarded and tooLong is set.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLine+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}

func (s *Server) handle(line string) (string, response) {
	resp := response{ID: json.RawMessage("null")}

	if !gjson.Valid(line) {
		resp.Error = "malformed request"
		return "", resp
	}

	req := gjson.Parse(line)
	if id := req.Get("id"); id.Exists() {
		resp.ID = json.RawMessage(id.Raw)
	}
	method := req.Get("method").String()
	ctx := log.WithField("method", method)

	result, err := s.Dispatch(method, req.Get("args"))
	if err != nil {
		ctx.WithError(err).Warn("call failed")
		resp.Error = err.Error()
		return method, resp
	}

	raw, err := json.Marshal(result)
	if err != nil {
		resp.Error = fmt.Sprintf("encode result: %v", err)
		return method, resp
	}
	resp.Result = raw
	ctx.Debug("call handled")
	return method, resp
}

// Dispatch routes a method name to the plugin. args is a positional JSON
// array; missing string arguments read as "".
func (s *Server) Dispatch(method string, args gjson.Result) (any, error) {
	arg := func(i int) string {
		return args.Get(fmt.Sprint(i)).String()
	}

	switch method {
	case "_main", "on_load":
		s.plugin.OnLoad()
		return nil, nil
	case "_unload", "on_unload":
		s.plugin.OnUnload()
		return nil, nil
	case "_uninstall", "on_uninstall":
		s.plugin.OnUninstall()
		return nil, nil
	case "get_entries":
		return s.plugin.GetEntries()
	case "add_entry":
		return s.plugin.AddEntry(arg(0), arg(1))
	case "update_entry":
		e, err := s.plugin.UpdateEntry(arg(0), arg(1), arg(2))
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, nil
		}
		return e, nil
	case "delete_entry":
		return s.plugin.DeleteEntry(arg(0))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}
