// Package tui drives a fortune session from a line-oriented terminal.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/pkg/domain"
)

// errQuit ends Run without an error.
var errQuit = errors.New("quit")

type lineResult struct {
	text string
	err  error
}

// App renders each screen and maps typed answers to session triggers.
type App struct {
	sess   *fatefinder.Session
	loc    *i18n.Localizer
	out    io.Writer
	render Renderer
	banner bool
	now    func() time.Time

	reader    *bufio.Reader
	lines     chan lineResult
	startOnce sync.Once
}

// Option configures the App.
type Option func(*App)

// WithRenderer sets how screen markdown is printed.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		if r != nil {
			a.render = r
		}
	}
}

// WithLocalizer sets the display language.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(a *App) {
		a.loc = l
	}
}

// WithBanner prints the banner before the first screen.
func WithBanner(enabled bool) Option {
	return func(a *App) {
		a.banner = enabled
	}
}

// WithClock sets the source of the default "today" shown in the form.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// NewApp creates an App reading answers from in and writing screens to out.
func NewApp(sess *fatefinder.Session, in io.Reader, out io.Writer, opts ...Option) *App {
	a := &App{
		sess:   sess,
		out:    out,
		render: PlainRenderer,
		now:    time.Now,
		reader: bufio.NewReader(in),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.loc == nil {
		a.loc = i18n.MustLoad().Localizer()
	}
	return a
}

// Run shows screens until the user quits, input ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.banner {
		PrintBanner(a.out)
	}
	for {
		snap, err := a.sess.Snapshot(ctx)
		if err != nil {
			return err
		}
		a.show(snap)

		err = a.step(ctx, snap)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) step(ctx context.Context, snap domain.Snapshot) error {
	switch snap.Screen {
	case domain.ScreenHome:
		if err := a.pause(ctx, i18n.HomeStart); err != nil {
			return err
		}
		return a.report(a.sess.StartInput(ctx))
	case domain.ScreenInput:
		form, err := a.readForm(ctx)
		if err != nil {
			return err
		}
		_, err = a.sess.Submit(ctx, form)
		if domain.IsValidationError(err) {
			// shown by the next render of the input screen
			return nil
		}
		return a.report(domain.Snapshot{}, err)
	case domain.ScreenLoading:
		return a.waitSettled(ctx)
	case domain.ScreenResult:
		if err := a.pause(ctx, i18n.ResultRestart); err != nil {
			return err
		}
		return a.report(a.sess.Restart(ctx))
	case domain.ScreenError:
		if err := a.pause(ctx, i18n.ErrorRetry); err != nil {
			return err
		}
		return a.report(a.sess.Retry(ctx))
	}
	return fmt.Errorf("unknown screen %q", snap.Screen)
}

// report prints recoverable trigger errors and passes fatal ones on.
func (a *App) report(_ domain.Snapshot, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrSessionClosed) || errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(a.out, "%s\n", a.loc.Error(err))
	return nil
}

func (a *App) show(snap domain.Snapshot) {
	md := Markdown(snap, a.loc)
	out, err := a.render(md)
	if err != nil {
		out = md
	}
	fmt.Fprintln(a.out, strings.TrimSpace(out))
	fmt.Fprintln(a.out)
}

func (a *App) waitSettled(ctx context.Context) error {
	updates, cancel := a.sess.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return domain.ErrSessionClosed
			}
			if u.Screen != domain.ScreenLoading {
				return nil
			}
		}
	}
}

// pause waits for Enter; "q" quits.
func (a *App) pause(ctx context.Context, action string) error {
	fmt.Fprintf(a.out, "[%s] %s\n", a.loc.T(action), a.loc.T(i18n.AppHint))
	line, err := a.readLine(ctx)
	if err != nil {
		return err
	}
	if strings.EqualFold(line, "q") {
		return errQuit
	}
	return nil
}

func (a *App) readForm(ctx context.Context) (domain.Form, error) {
	var form domain.Form
	var err error

	if form.Name, err = a.ask(ctx, i18n.InputName, ""); err != nil {
		return form, err
	}
	if form.Birthday, err = a.askDate(ctx, i18n.InputBirthday, "", domain.MsgInvalidBirthday); err != nil {
		return form, err
	}

	if form.BloodType, err = a.ask(ctx, i18n.InputBloodType, string(domain.BloodTypeA)); err != nil {
		return form, err
	}
	if form.Today, err = a.askDate(ctx, i18n.InputToday, domain.DateOf(a.now()).String(), domain.MsgInvalidToday); err != nil {
		return form, err
	}
	return form, nil
}

// ask prompts for one field; an empty answer selects def.
func (a *App) ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(a.out, "%s [%s]: ", a.loc.T(label), def)
	} else {
		fmt.Fprintf(a.out, "%s: ", a.loc.T(label))
	}
	for {
		line, err := a.readLine(ctx)
		if err != nil {
			return "", err
		}
		clean, err := SanitizeInput(line)
		if err != nil {
			fmt.Fprintf(a.out, "%v\n%s: ", err, a.loc.T(label))
			continue
		}
		if clean == "" {
			return def, nil
		}
		return clean, nil
	}
}

// askDate prompts until the answer is empty or reads as YYYY-MM-DD.
// An empty answer with no default yields the zero date, which the session rejects.
func (a *App) askDate(ctx context.Context, label, def, invalidKey string) (domain.YearMonthDay, error) {
	for {
		answer, err := a.ask(ctx, label, def)
		if err != nil {
			return domain.YearMonthDay{}, err
		}
		if answer == "" {
			return domain.YearMonthDay{}, nil
		}
		if d, ok := ParseDate(answer); ok {
			return d, nil
		}
		fmt.Fprintf(a.out, "> %s\n", a.loc.T(invalidKey))
	}
}

// ParseDate reads three dash-separated numbers (YYYY-MM-DD). Calendar validity
// is checked by the session, so "2001-02-30" parses.
func ParseDate(s string) (domain.YearMonthDay, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return domain.YearMonthDay{}, false
	}
	var nums [3]int
	for i, p := range parts {
		if p == "" || len(p) > 4 {
			return domain.YearMonthDay{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || p[0] == '+' {
			return domain.YearMonthDay{}, false
		}
		nums[i] = n
	}
	return domain.YearMonthDay{Year: nums[0], Month: nums[1], Day: nums[2]}, true
}

func (a *App) readLine(ctx context.Context) (string, error) {
	a.startOnce.Do(func() {
		a.lines = make(chan lineResult)
		go a.pump()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

func (a *App) pump() {
	defer close(a.lines)
	for {
		text, err := a.reader.ReadString('\n')
		if text != "" {
			a.lines <- lineResult{text: text}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.lines <- lineResult{err: err}
			}
			return
		}
	}
}
