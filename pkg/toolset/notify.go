package toolset

import (
	"context"
	"encoding/json"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
)

type sendNotificationArgs struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

func (t *Toolset) execSendNotification(ctx context.Context, arguments json.RawMessage) (meta.ToolResult, error) {
	var args sendNotificationArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.Title == "" || args.Message == "" {
		return errorResult("title and message must not be empty"), nil
	}
	if args.Priority == 0 {
		args.Priority = 5
	}

	if t.notifier == nil {
		return errorResult("no notification sink configured"), nil
	}

	if err := t.notifier.Send(ctx, args.Title, args.Message, args.Priority); err != nil {
		return errorResult("%s", err.Error()), nil
	}

	return toResult(true, map[string]any{
		"title":    args.Title,
		"priority": args.Priority,
	}), nil
}
