package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/filex"
)

const chatHelp = "Chat mode: type a message, '/image <path> [text]' to attach a photo, '/new' to restart, empty line to leave."

func (a *App) ensureSession(ctx context.Context, reset bool) (bool, error) {
	if a.session != nil && !reset {
		return false, nil
	}
	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return false, err
	}
	a.session = services.NewSession(p, a.now())
	return true, nil
}

func (a *App) Chat(ctx context.Context, args []string) error {
	started, err := a.ensureSession(ctx, false)
	if err != nil {
		return err
	}
	if started {
		a.println(a.session.Messages()[0].Text)
	}

	if len(args) > 0 {
		return a.chatTurn(ctx, strings.Join(args, " "))
	}

	a.println(chatHelp)
	for {
		line, ok := a.nextLine()
		if !ok || line == "" || line == "/end" {
			return nil
		}
		if line == "/new" {
			if _, err := a.ensureSession(ctx, true); err != nil {
				return err
			}
			a.println(a.session.Messages()[0].Text)
			continue
		}
		if err := a.chatTurn(ctx, line); err != nil {
			a.println(describe(err))
		}
	}
}

func (a *App) chatTurn(ctx context.Context, line string) error {
	text := line
	var image *models.Image
	if rest, ok := strings.CutPrefix(line, "/image "); ok {
		path, caption, _ := strings.Cut(strings.TrimSpace(rest), " ")
		mime, data, err := filex.ReadImage(path)
		if err != nil {
			return err
		}
		image = &models.Image{MimeType: mime, Data: data}
		text = caption
	}

	reply, err := a.svc.Orchestrator.Chat(ctx, a.session, text, image)
	if err != nil {
		return err
	}
	printReply(a.out, reply)
	return nil
}
