package toolset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
)

type readFileArgs struct {
	FilePath string `json:"file_path"`
	MaxLines int    `json:"max_lines"`
	JQFilter string `json:"jq_filter"`
}

func (t *Toolset) execReadFile(arguments json.RawMessage) (meta.ToolResult, error) {
	var args readFileArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.FilePath == "" {
		return errorResult("file_path must not be empty"), nil
	}
	if args.MaxLines <= 0 {
		args.MaxLines = 500
	}

	info, err := os.Stat(args.FilePath)
	if os.IsNotExist(err) {
		return errorResult("file not found: %s", args.FilePath), nil
	}
	if err != nil {
		return errorResult("%s", err.Error()), nil
	}
	if info.IsDir() {
		return errorResult("not a file: %s", args.FilePath), nil
	}

	f, err := os.Open(args.FilePath)
	if err != nil {
		if os.IsPermission(err) {
			return errorResult("permission denied: %s", args.FilePath), nil
		}
		return errorResult("%s", err.Error()), nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	for scanner.Scan() {
		if count >= args.MaxLines {
			lines = append(lines, fmt.Sprintf("\n... truncated after %d lines ...", args.MaxLines))
			break
		}
		lines = append(lines, scanner.Text())
		count++
	}

	content := strings.Join(lines, "\n")

	if args.JQFilter != "" {
		var data any
		if err := json.Unmarshal([]byte(content), &data); err != nil {
			return errorResult("jq_filter requires %s to contain valid JSON: %s", args.FilePath, err), nil
		}
		filtered, err := applyJQFilter(args.JQFilter, data)
		if err != nil {
			return errorResult("%s", err), nil
		}
		return toResult(true, map[string]any{
			"content":   filtered,
			"path":      args.FilePath,
			"jq_filter": args.JQFilter,
		}), nil
	}

	return toResult(true, map[string]any{
		"content":    content,
		"path":       args.FilePath,
		"lines_read": len(lines),
	}), nil
}

func listDirectory(path string, showHidden bool) (meta.ToolResult, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return errorResult("directory not found: %s", path), nil
	}
	if err != nil {
		return errorResult("%s", err.Error()), nil
	}

	type entryInfo struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
		Dir  bool   `json:"is_dir"`
		Mode string `json:"mode"`
	}

	var out []entryInfo
	for _, e := range entries {
		if !showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, entryInfo{
			Name: e.Name(),
			Size: info.Size(),
			Dir:  e.IsDir(),
			Mode: info.Mode().String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	entriesJSON, err := json.Marshal(out)
	if err != nil {
		return errorResult("%s", err.Error()), nil
	}
	var entriesAny any
	_ = json.Unmarshal(entriesJSON, &entriesAny)

	return toResult(true, map[string]any{
		"directory": path,
		"entries":   entriesAny,
		"count":     len(out),
	}), nil
}

type retrieveCachedOutputArgs struct {
	CacheID  string `json:"cache_id"`
	MaxChars int    `json:"max_chars"`
}

// execRetrieveCachedOutput reads a file the meta layer wrote to the
// shared tool-output cache directory (spec §5 "Resource sharing"),
// truncating with head/tail symmetry the same way meta.simpleTruncate
// does for in-line summarisation fallback.
func (t *Toolset) execRetrieveCachedOutput(arguments json.RawMessage) (meta.ToolResult, error) {
	var args retrieveCachedOutputArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.CacheID == "" {
		return errorResult("cache_id must not be empty"), nil
	}
	if args.MaxChars <= 0 {
		args.MaxChars = 10000
	}

	path := filepath.Join(t.cacheDir, args.CacheID+".txt")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errorResult("no cached output found for cache_id: %s", args.CacheID), nil
	}
	if err != nil {
		return errorResult("%s", err.Error()), nil
	}

	content := string(data)
	truncated := false
	if len(content) > args.MaxChars {
		half := args.MaxChars / 2
		content = content[:half] + fmt.Sprintf("\n... [%d chars omitted] ...\n", len(content)-args.MaxChars) + content[len(content)-half:]
		truncated = true
	}

	return toResult(true, map[string]any{
		"content":   content,
		"cache_id":  args.CacheID,
		"truncated": truncated,
	}), nil
}
