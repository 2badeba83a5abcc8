package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/neverland-admin/internal/config"
	"github.com/and161185/neverland-admin/internal/model"
	"github.com/and161185/neverland-admin/internal/store"
)

const helpText = `Collections: games orders sales testimonials faqs users

  <collection> list
  <collection> get <id>
  <collection> add <json>
  <collection> update <id> <json>     (merges fields into the stored record)
  <collection> rm <id>
  orders status <id> pending|paid|cancelled
  users role <id> admin|user
  sales phases | sales vouchers
  stats | activity | status | refresh
  notifications | notify <text> | read <id> | clear
  token <jwt>                         (save bearer token for the next start)
  help | exit
`

// errQuit ends the console loop.
var errQuit = errors.New("quit")

type console struct {
	st   *store.Store
	cfg  config.Config
	out  io.Writer
	now  func() time.Time
	cols map[string]collectionCmd
}

func newConsole(st *store.Store, cfg config.Config, out io.Writer) *console {
	return &console{st: st, cfg: cfg, out: out, now: time.Now, cols: collections(st)}
}

func (c *console) println(a ...any) { _, _ = fmt.Fprintln(c.out, a...) }

func (c *console) printJSON(v any) {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// splitArgs splits line into at most n words; the last one keeps the remainder verbatim.
func splitArgs(line string, n int) []string {
	var out []string
	rest := strings.TrimSpace(line)
	for len(out) < n-1 && rest != "" {
		i := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' })
		if i < 0 {
			break
		}
		out = append(out, rest[:i])
		rest = strings.TrimSpace(rest[i:])
	}
	if rest != "" {
		out = append(out, rest)
	}
	return out
}

func (c *console) reportSaved(rec any, origin store.Origin) {
	switch origin {
	case store.OriginNone:
		c.println("no change")
		return
	case store.OriginLocal:
		c.println("saved locally only, the records service is unreachable")
	default:
		c.println("saved")
	}
	c.printJSON(rec)
}

// exec runs one console command.
func (c *console) exec(ctx context.Context, line string) error {
	args := splitArgs(line, 2)
	if len(args) == 0 {
		return nil
	}
	cmd, rest := args[0], ""
	if len(args) > 1 {
		rest = args[1]
	}

	switch cmd {
	case "help", "?":
		_, _ = io.WriteString(c.out, helpText)
	case "exit", "quit":
		return errQuit
	case "stats":
		c.printJSON(c.st.Statistics())
	case "activity":
		c.printJSON(c.st.Activity())
	case "status":
		return c.status()
	case "refresh":
		remote, err := c.st.RefreshAll(ctx)
		if err != nil {
			return err
		}
		if remote {
			c.println("refreshed from the records service")
		} else {
			c.println("records service unreachable, showing local data")
		}
	case "notifications":
		c.printJSON(c.st.Notifications())
	case "notify":
		if rest == "" {
			return errors.New("usage: notify <text>")
		}
		c.printJSON(c.st.PushNotification(rest))
	case "read":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return fmt.Errorf("usage: read <id>: %w", err)
		}
		c.st.MarkNotificationRead(id)
	case "clear":
		c.st.ClearNotifications()
	case "token":
		return c.saveToken(rest)
	default:
		col, ok := c.cols[cmd]
		if !ok {
			return fmt.Errorf("unknown command %q, try help", cmd)
		}
		return c.collection(ctx, cmd, col, rest)
	}
	return nil
}

func (c *console) collection(ctx context.Context, name string, col collectionCmd, line string) error {
	args := splitArgs(line, 2)
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], ""
	if len(args) > 1 {
		rest = args[1]
	}

	switch {
	case sub == "list":
		c.printJSON(col.list())
		return nil
	case sub == "get":
		rec, ok := col.get(rest)
		if !ok {
			return fmt.Errorf("%s %s: not found", name, rest)
		}
		c.printJSON(rec)
		return nil
	case sub == "add":
		if rest == "" {
			return fmt.Errorf("usage: %s add <json>", name)
		}
		rec, origin, err := col.add(ctx, []byte(rest))
		if err != nil {
			return err
		}
		c.reportSaved(rec, origin)
		return nil
	case sub == "update":
		p := splitArgs(rest, 2)
		if len(p) < 2 {
			return fmt.Errorf("usage: %s update <id> <json>", name)
		}
		rec, origin, err := col.update(ctx, p[0], []byte(p[1]))
		if err != nil {
			return err
		}
		c.reportSaved(rec, origin)
		return nil
	case sub == "rm":
		_, origin, err := col.remove(ctx, rest)
		if err != nil {
			return err
		}
		if origin == store.OriginLocal {
			c.println("removed locally only")
		} else {
			c.println("removed")
		}
		return nil
	case name == "orders" && sub == "status":
		p := strings.Fields(rest)
		if len(p) != 2 {
			return errors.New("usage: orders status <id> <status>")
		}
		saved, err := c.st.UpdateOrderStatus(ctx, p[0], model.OrderStatus(p[1]))
		if err != nil {
			return err
		}
		c.reportSaved(saved.Record, saved.Origin)
		return nil
	case name == "users" && sub == "role":
		p := strings.Fields(rest)
		if len(p) != 2 {
			return errors.New("usage: users role <id> <role>")
		}
		saved, err := c.st.UpdateUserRole(ctx, p[0], model.Role(p[1]))
		if err != nil {
			return err
		}
		c.reportSaved(saved.Record, saved.Origin)
		return nil
	case name == "sales" && sub == "phases":
		c.printJSON(c.st.PromotionPhases())
		return nil
	case name == "sales" && sub == "vouchers":
		c.printJSON(c.st.ActiveVouchers())
		return nil
	}
	return fmt.Errorf("unknown %s command %q, try help", name, sub)
}

func (c *console) status() error {
	mode := "remote"
	if !c.st.RemoteAvailable() {
		mode = "local only"
	}
	counts := make(map[string]int, len(c.cols))
	for name, col := range c.cols {
		counts[name] = col.count()
	}
	c.printJSON(map[string]any{
		"addr":          c.cfg.Addr,
		"mode":          mode,
		"records":       counts,
		"unreadNotices": c.st.UnreadNotifications(),
	})
	return nil
}

func (c *console) saveToken(tok string) error {
	if tok == "" {
		return errors.New("usage: token <jwt>")
	}
	if c.cfg.TokenFile == "" {
		return errors.New("no token file configured")
	}
	exp := config.ExpiryOf(tok, c.now().Add(24*time.Hour))
	if err := config.SaveToken(c.cfg.TokenFile, tok, exp); err != nil {
		return err
	}
	c.println("token saved, expires", exp.Format(time.RFC3339), "(restart to use it)")
	return nil
}

// run reads commands from in until EOF, exit or ctx cancellation.
func (c *console) run(ctx context.Context, in io.Reader, prompt bool) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		if prompt {
			_, _ = fmt.Fprintf(c.out, "neverland[%s]> ", c.mode())
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		err := c.exec(ctx, sc.Text())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			c.println("error:", err)
		}
	}
}

func (c *console) mode() string {
	if c.st.RemoteAvailable() {
		return "online"
	}
	return "local"
}
