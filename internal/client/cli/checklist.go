package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/liftaudit/internal/filex"
)

var errNoOpenDraft = errors.New("no draft is open (use 'new' or 'open')")

// Score sets or clears a question score: score <question> <n|->
func (a *App) Score(ctx context.Context, args []string) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}
	if len(args) != 2 {
		printlnFn("Usage: score <question id> <score|->")
		return nil
	}
	qid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}

	if args[1] == "-" {
		return a.form.SetScore(qid, nil)
	}
	score, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid score %q", args[1])
	}
	return a.form.SetScore(qid, &score)
}

// Comment sets a question comment: comment <question> <text...>
func (a *App) Comment(ctx context.Context, args []string) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}
	if len(args) < 1 {
		printlnFn("Usage: comment <question id> <text>")
		return nil
	}
	qid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}
	return a.form.SetComment(qid, strings.Join(args[1:], " "))
}

// Attach loads a file from disk and attaches it to a question.
func (a *App) Attach(ctx context.Context, args []string) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}
	if len(args) != 2 {
		printlnFn("Usage: attach <question id> <file>")
		return nil
	}
	qid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}

	fi, err := filex.LoadFile(args[1])
	if err != nil {
		return err
	}
	att, err := a.form.AddAttachment(qid, fi.Name, fi.MimeType, fi.ModTime, fi.Data)
	if err != nil {
		return err
	}
	printlnFn("Attached", fi.Name, "as", shortID(att.LocalID))
	return nil
}

// Detach removes an attachment by id or unique id prefix.
func (a *App) Detach(ctx context.Context, args []string) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}
	if len(args) != 2 {
		printlnFn("Usage: detach <question id> <attachment id>")
		return nil
	}
	qid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid question id %q", args[0])
	}

	snap := a.form.Snapshot()
	for _, q := range snap.Questions {
		if q.ID != qid {
			continue
		}
		for _, att := range q.Attachments {
			if strings.HasPrefix(att.LocalID, args[1]) {
				a.form.RemoveAttachment(qid, att.LocalID)
				printlnFn("Detached", att.Name)
				return nil
			}
		}
	}
	return fmt.Errorf("no attachment matches %q on question %d", args[1], qid)
}

// Show prints the current checklist state.
func (a *App) Show(ctx context.Context) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}

	snap := a.form.Snapshot()
	printlnFn("Draft", shortID(a.draftID))
	for _, q := range snap.Questions {
		score := "-"
		if q.Score != nil {
			score = fmt.Sprintf("%d/%d", *q.Score, q.MaxScore)
		}
		line := fmt.Sprintf("  q%-4d score: %-5s", q.ID, score)
		if q.Comment != "" {
			line += fmt.Sprintf("  comment: %s", q.Comment)
		} else if q.RequiresComment {
			line += "  comment: REQUIRED"
		}
		if n := len(q.Attachments); n > 0 {
			line += fmt.Sprintf("  photos: %d", n)
		}
		printlnFn(line)
	}
	return nil
}

// Save validates the checklist and flushes it to the store.
func (a *App) Save(ctx context.Context) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}
	if _, err := a.form.SaveDraft(); err != nil {
		return err
	}
	printlnFn("Draft saved.")
	return nil
}
