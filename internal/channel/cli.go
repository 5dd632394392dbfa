package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"multibot/internal/domain"
)

// CLI implements domain.Channel for interactive terminal chat. Photo units
// print as the image URL with the caption underneath; keyboards print as a
// numbered label list so every Telegram flow stays reachable offline.
type CLI struct {
	bus      domain.MessageBus
	logger   *slog.Logger
	in       io.Reader
	out      io.Writer
	waiting  bool
	waitMu   sync.Mutex
	waitStop chan struct{}
}

type CLIConfig struct {
	Logger *slog.Logger
	In     io.Reader
	Out    io.Writer
}

func NewCLI(cfg CLIConfig) *CLI {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &CLI{
		logger: cfg.Logger,
		in:     cfg.In,
		out:    cfg.Out,
	}
}

func (c *CLI) Name() string { return "cli" }

// Start runs the interactive REPL and blocks until context is cancelled.
func (c *CLI) Start(ctx context.Context, bus domain.MessageBus) error {
	c.bus = bus

	bus.OnOutbound("cli", func(msg domain.OutboundMessage) {
		c.stopWaiting()
		_, _ = fmt.Fprint(c.out, "\r\033[K") // Clear spinner line
		_, _ = fmt.Fprintln(c.out, "--- multibot ---")
		for _, unit := range msg.Units {
			c.printUnit(unit)
		}
		c.printKeyboard(msg.Keyboard)
		_, _ = fmt.Fprintln(c.out, "----------------")
		_, _ = fmt.Fprint(c.out, "You> ")
	})

	_, _ = fmt.Fprintln(c.out, "multibot CLI. Type a command or button label and press Enter. Type /quit to exit.")
	_, _ = fmt.Fprint(c.out, "You> ")

	scanner := bufio.NewScanner(c.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil // EOF
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			_, _ = fmt.Fprint(c.out, "You> ")
			continue
		}
		if line == "/quit" || line == "/exit" || line == "/q" {
			c.logger.Info("user requested quit")
			return nil
		}

		c.startWaiting()
		c.bus.Publish(domain.InboundMessage{
			Channel:   "cli",
			ChatID:    "direct",
			SenderID:  "user",
			Content:   line,
			Timestamp: time.Now(),
		})
	}
}

func (c *CLI) printUnit(unit domain.ContentUnit) {
	switch unit.Kind {
	case domain.UnitPhoto:
		_, _ = fmt.Fprintln(c.out, "[фото]", unit.ImageURL)
		if unit.Caption != "" {
			_, _ = fmt.Fprintln(c.out, unit.Caption)
		}
	default:
		_, _ = fmt.Fprintln(c.out, unit.Body)
	}
}

func (c *CLI) printKeyboard(kb *domain.Keyboard) {
	if kb == nil || len(kb.Rows) == 0 {
		return
	}
	_, _ = fmt.Fprintln(c.out, "Кнопки:")
	n := 1
	for _, row := range kb.Rows {
		for _, label := range row {
			_, _ = fmt.Fprintf(c.out, "  %d. %s\n", n, label)
			n++
		}
	}
}

func (c *CLI) startWaiting() {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()
	if c.waiting {
		return
	}
	c.waiting = true
	c.waitStop = make(chan struct{})
	go func() {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-c.waitStop:
				return
			case <-ticker.C:
				fmt.Fprintf(c.out, "\r%s ...", frames[i%len(frames)])
				i++
			}
		}
	}()
}

func (c *CLI) stopWaiting() {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()
	if !c.waiting {
		return
	}
	c.waiting = false
	close(c.waitStop)
}

// Stop is a no-op for CLI (we exit when Start returns).
func (c *CLI) Stop() error { return nil }
