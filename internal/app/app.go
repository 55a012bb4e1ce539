// Package app wires configuration, storage, services and the terminal
// front end into a running client.
package app

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/cache"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/config"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/database"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/redis"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/service"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/session"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/ui"
)

func Run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		// The feed degrades to direct row-store reads without the cache.
		log.Printf("[App] redis unreachable, feed cache disabled: %v", err)
	}

	media, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}

	tokens, err := service.NewFileTokenStore()
	if err != nil {
		return fmt.Errorf("failed to init token store: %w", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	scrapRepo := repository.NewScrapRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	recent := cache.NewRecentFeed(redisClient.Client)

	term := ui.NewTerminal(os.Stdout, os.Stdin)
	state := session.NewState()

	auth := service.NewAuthService(accountRepo, sessionRepo, profileRepo, resetRepo, tokens, cfg)
	profiles := service.NewProfileService(profileRepo, postRepo, media, term)
	feed := service.NewFeedService(state, postRepo, recent, media, term, term, term)
	directory := service.NewDirectoryService(state, profileRepo, term)
	scraps := service.NewScrapService(state, scrapRepo, term, term)
	birthdays := service.NewBirthdayService(profileRepo, term)
	messages := service.NewMessageService(state, messageRepo, profileRepo)

	controller := session.NewController(auth, profiles, state, term, term, feed, directory, scraps, birthdays)
	feed.AttachHeader(controller)
	controller.Initialize(ctx)

	cli := &cli{
		ctx:        ctx,
		controller: controller,
		state:      state,
		feed:       feed,
		profiles:   profiles,
		directory:  directory,
		scraps:     scraps,
		birthdays:  birthdays,
		messages:   messages,
		in:         bufio.NewScanner(os.Stdin),
	}
	return cli.loop()
}

type cli struct {
	ctx        context.Context
	controller *session.Controller
	state      *session.State
	feed       *service.FeedService
	profiles   *service.ProfileService
	directory  *service.DirectoryService
	scraps     *service.ScrapService
	birthdays  *service.BirthdayService
	messages   *service.MessageService
	in         *bufio.Scanner
}

func (c *cli) loop() error {
	fmt.Println(`Type "help" for commands.`)
	for {
		fmt.Print("> ")
		if !c.in.Scan() {
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "help":
			c.help()
		case "quit", "exit":
			return nil
		case "login":
			email := c.prompt("email")
			password := c.prompt("password")
			_ = c.controller.SignIn(c.ctx, email, password)
		case "logout":
			c.controller.SignOut(c.ctx)
		case "register":
			c.register()
		case "forgot":
			_ = c.controller.ForgotPassword(c.ctx, rest)
		case "password":
			pw := c.prompt("new password")
			pw2 := c.prompt("confirm password")
			if err := c.controller.ChangePassword(c.ctx, pw, pw2); err != nil {
				fmt.Println(err)
			}
		case "feed":
			_ = c.feed.Refresh(c.ctx)
		case "post":
			c.post(rest)
		case "like":
			_ = c.feed.ToggleLike(c.ctx, rest)
		case "comment":
			postID, text, _ := strings.Cut(rest, " ")
			if err := c.feed.AddComment(c.ctx, postID, text); err != nil {
				fmt.Println(err)
			}
		case "delete":
			_ = c.feed.DeletePost(c.ctx, rest)
		case "people":
			_ = c.directory.Refresh(c.ctx)
		case "everyone":
			_ = c.directory.ShowAll(c.ctx)
		case "search":
			_ = c.directory.Search(c.ctx, rest)
		case "scraps":
			_ = c.scraps.Refresh(c.ctx)
		case "scrap":
			_ = c.scraps.Add(c.ctx, rest)
		case "birthdays":
			_ = c.birthdays.Refresh(c.ctx)
		case "profile":
			if err := c.profiles.ShowPanel(c.ctx, c.state.Me()); err != nil {
				fmt.Println(err)
			}
		case "msg":
			c.message(rest)
		case "config":
			c.saveConfig()
		case "avatar":
			c.avatar(rest)
		default:
			fmt.Println("Unknown command. Type \"help\".")
		}
	}
}

func (c *cli) help() {
	fmt.Println(`Commands:
  login logout register forgot <email> password
  feed post [text] like <id> comment <id> <text> delete <id>
  people everyone search <query>
  scraps scrap <text> birthdays
  profile config avatar <file> msg <username>
  quit`)
}

func (c *cli) prompt(label string) string {
	fmt.Printf("%s: ", label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *cli) register() {
	form := session.RegistrationForm{
		Name:     c.prompt("name"),
		Lastname: c.prompt("lastname"),
		DOB:      c.prompt("date of birth (YYYY-MM-DD)"),
		Country:  c.prompt("country"),
		Gender:   c.prompt("gender"),
		Hint:     c.prompt("password hint"),
		Email:    c.prompt("email"),
		Username: c.prompt("username"),
	}
	form.Password = c.prompt("password")
	form.Password2 = c.prompt("confirm password")
	form.AcceptTerms = strings.EqualFold(c.prompt("accept terms? (yes/no)"), "yes")
	_ = c.controller.Register(c.ctx, form)
}

func (c *cli) post(text string) {
	var att *model.Attachment
	if path := c.prompt("attachment file (blank for none)"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Println("cannot read attachment:", err)
			return
		}
		att = &model.Attachment{
			Filename: filepath.Base(path),
			Kind:     mediaKind(path),
			Data:     data,
		}
	}
	_ = c.feed.CreatePost(c.ctx, text, att)
}

func (c *cli) message(username string) {
	if username == "" {
		username = c.prompt("to (username)")
	}
	subject := c.prompt("subject")
	body := c.prompt("message")
	if _, err := c.messages.Send(c.ctx, username, subject, body); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Sent.")
}

func (c *cli) saveConfig() {
	form := session.ConfigForm{
		Name:     c.prompt("name (blank keeps current)"),
		Lastname: c.prompt("lastname (blank keeps current)"),
		Username: c.prompt("username (blank keeps current)"),
		DOB:      c.prompt("date of birth YYYY-MM-DD (blank clears)"),
		Bio:      c.prompt("bio"),
		City:     c.prompt("city"),
		Country:  c.prompt("country"),
	}
	if err := c.controller.SaveConfig(c.ctx, form); err != nil {
		fmt.Println(err)
	}
}

func (c *cli) avatar(path string) {
	if path == "" {
		path = c.prompt("image file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("cannot read image:", err)
		return
	}
	if err := c.controller.ChangeAvatar(c.ctx, data); err != nil {
		fmt.Println(err)
	}
}

func mediaKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".webm", ".mov":
		return model.MediaVideo
	case ".mp3", ".ogg", ".wav", ".m4a":
		return model.MediaAudio
	default:
		return model.MediaImage
	}
}
