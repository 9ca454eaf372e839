// Command chatctl is a terminal client for the group chat gRPC API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"groupchat/api"
	"groupchat/client"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"google.golang.org/grpc/status"
)

const callTimeout = 10 * time.Second

type Config struct {
	Addr  string `envconfig:"CHATCTL_ADDR" default:"localhost:8080"`
	Token string `envconfig:"CHATCTL_TOKEN"`
	// CHATCTL_COLOURS toggles colorized output
	Colours bool `envconfig:"CHATCTL_COLOURS" default:"true"`
}

const usage = `usage: chatctl <command> [flags]

commands:
  register -email E -password P [-name N]
  login    -email E -password P
  anonymous              sign in as a guest
  me
  create   -name N [-with id1,id2]
  chats
  send     -chat ID -text T
  messages -chat ID
  watch    [-chat ID]   follow the chat list, or one chat's messages
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Render("error: "+describe(err)))
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	color.Enable = config.Colours

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	c, closeConn, err := client.Dial(config.Addr)
	if err != nil {
		return err
	}
	defer func() { _ = closeConn() }()
	c = c.WithToken(config.Token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	switch args[0] {
	case "register":
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		name := fs.String("name", "", "display name")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return withTimeout(ctx, func(ctx context.Context) error {
			res, err := c.Register(ctx, *email, *password, *name)
			if err != nil {
				return err
			}
			printAuth(res)
			return nil
		})
	case "login":
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return withTimeout(ctx, func(ctx context.Context) error {
			res, err := c.Login(ctx, *email, *password)
			if err != nil {
				return err
			}
			printAuth(res)
			return nil
		})
	case "anonymous":
		return withTimeout(ctx, func(ctx context.Context) error {
			res, err := c.SignInAnonymously(ctx)
			if err != nil {
				return err
			}
			printAuth(res)
			return nil
		})
	case "me":
		return withTimeout(ctx, func(ctx context.Context) error {
			profile, err := c.Me(ctx)
			if err != nil {
				return err
			}
			printProfile(profile)
			return nil
		})
	case "create":
		name := fs.String("name", "", "chat name")
		with := fs.String("with", "", "comma separated participant ids")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return withTimeout(ctx, func(ctx context.Context) error {
			chatID, err := c.CreateChat(ctx, *name, splitIDs(*with))
			if err != nil {
				return err
			}
			fmt.Println(color.Green.Render("created chat " + chatID))
			return nil
		})
	case "chats":
		return withTimeout(ctx, func(ctx context.Context) error {
			chats, err := c.ListChats(ctx)
			if err != nil {
				return err
			}
			printChats(chats)
			return nil
		})
	case "send":
		chatID := fs.String("chat", "", "chat id")
		text := fs.String("text", "", "message content")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return withTimeout(ctx, func(ctx context.Context) error {
			return c.SendMessage(ctx, *chatID, *text)
		})
	case "messages":
		chatID := fs.String("chat", "", "chat id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return withTimeout(ctx, func(ctx context.Context) error {
			messages, err := c.ListMessages(ctx, *chatID)
			if err != nil {
				return err
			}
			printMessages(messages)
			return nil
		})
	case "watch":
		chatID := fs.String("chat", "", "chat id, empty to follow the chat list")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *chatID == "" {
			return watchChats(ctx, c)
		}
		return watchMessages(ctx, c, *chatID)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return fn(ctx)
}

func watchChats(ctx context.Context, c *client.Client) error {
	stream, err := c.SubscribeChats(ctx)
	if err != nil {
		return err
	}
	for {
		res, err := stream.Recv()
		if err != nil {
			return endOfStream(ctx, err)
		}
		fmt.Println(color.Cyan.Render(time.Now().Format("15:04:05") + " chat list"))
		printChats(res.Chats)
	}
}

func watchMessages(ctx context.Context, c *client.Client, chatID string) error {
	stream, err := c.SubscribeMessages(ctx, chatID)
	if err != nil {
		return err
	}
	for {
		res, err := stream.Recv()
		if err != nil {
			return endOfStream(ctx, err)
		}
		fmt.Println(color.Cyan.Render(time.Now().Format("15:04:05") + " messages of " + chatID))
		printMessages(res.Messages)
	}
}

func endOfStream(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		return nil
	}
	return err
}

func printAuth(res *api.AuthResponse) {
	fmt.Println(color.Green.Render("user " + res.UserID))
	fmt.Println(res.Token)
}

func printProfile(profile *api.UserProfile) {
	kind := "registered"
	if profile.Anonymous {
		kind = "anonymous"
	}
	table := newTable("ID", "Name", "Email", "Account")
	table.Append([]string{profile.ID, profile.Name, profile.Email, kind})
	table.Render()
}

func printChats(chats []api.Chat) {
	table := newTable("ID", "Name", "Participants", "Created")
	for _, chat := range chats {
		names := make([]string, 0, len(chat.Participants))
		for _, p := range chat.Participants {
			names = append(names, p.Name)
		}
		table.Append([]string{chat.ID, chat.Name, strings.Join(names, ", "), chat.CreatedAt.Local().Format(time.DateTime)})
	}
	table.Render()
}

func printMessages(messages []api.Message) {
	table := newTable("Sent", "From", "Content")
	for _, m := range messages {
		table.Append([]string{m.CreatedAt.Local().Format(time.DateTime), m.SenderName, m.Content})
	}
	table.Render()
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// describe prints the status message of gRPC errors instead of the full chain.
func describe(err error) string {
	if s, ok := status.FromError(err); ok {
		return fmt.Sprintf("%s (%s)", s.Message(), s.Code())
	}
	return err.Error()
}
