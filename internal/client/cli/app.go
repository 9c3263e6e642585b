package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

type App struct {
	config  *config.Config
	svc     *services.Services
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	session *services.Session
	now     func() time.Time
}

func NewApp(c *config.Config, svc *services.Services, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		config: c,
		svc:    svc,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}
}

// Run blocks in the REPL until the user exits, input ends or ctx is
// canceled.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to MediGenie (type 'help' for commands)")
	if !a.isRegistered(ctx) {
		a.println("No profile found. Type 'register' to create one.")
	}
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.nextLine)
}

func (a *App) nextLine() (string, bool) {
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (a *App) getStatus(ctx context.Context) string {
	p, err := a.svc.Profiles.Get(ctx)
	if err != nil || !p.IsRegistered {
		return ""
	}
	return fmt.Sprintf("(%s)", p.Name)
}

func (a *App) isRegistered(ctx context.Context) bool {
	_, err := a.svc.Profiles.Registered(ctx)
	return err == nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) text(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

// argOrPrompt joins args, or asks for the value when none were given.
func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return a.text(prompt)
}

// EnsureAPIKey asks for the inference API key on an interactive terminal
// when none was configured.
func EnsureAPIKey(c *config.Config, w io.Writer) error {
	if c.APIKey != "" {
		return nil
	}
	if !isTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no API key configured: set %s or the api_key config field", config.EnvAPIKey)
	}
	key, err := GetSecret("Gemini API key", w)
	if err != nil {
		return err
	}
	c.APIKey = strings.TrimSpace(string(key))
	common.WipeByteArray(key)
	if c.APIKey == "" {
		return errors.New("empty API key")
	}
	return nil
}
