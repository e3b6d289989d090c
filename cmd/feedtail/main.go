// Command feedtail is a terminal reader for the guest comment feed. It signs
// in with a guest name, prints the newest comments, and loads older pages on
// demand:
//
//	ENTER            load the next page
//	:post <text>     leave a comment
//	:refresh         reload the feed from the top
//	:quit            exit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"wedding-invitation-backend/pkg/feedclient"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "invitation API base URL")
	name := flag.String("name", "", "guest name to sign in with")
	pageSize := flag.Int("page-size", feedclient.DefaultPageSize, "comments per page")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: feedtail -name \"Guest Name\" [-url http://...]")
		os.Exit(2)
	}

	ctx := context.Background()
	token, err := feedclient.Login(ctx, *baseURL, *name)
	if err != nil {
		var apiErr *feedclient.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "NOT_ON_GUEST_LIST" {
			log.Fatalf("Sorry, %q is not on the guest list", *name)
		}
		log.Fatalf("Login failed: %v", err)
	}

	transport := feedclient.NewHTTPTransport(*baseURL, token)
	store := feedclient.NewStore(transport, *pageSize)
	ctrl := feedclient.NewController(store)
	gate := feedclient.NewGate(transport)
	defer ctrl.Close()

	// Each resolved load redraws the feed; printed counts track how many
	// comments have already been shown so pages append instead of repeating.
	shown := 0
	updates := make(chan struct{}, 1)
	ctrl.OnUpdate = func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	render := func() {
		items := store.Items()
		if store.Failed() {
			fmt.Println("-- load failed, press ENTER to retry --")
			return
		}
		if shown > len(items) {
			shown = 0 // feed was refreshed
			fmt.Println("-- refreshed --")
		}
		for _, c := range items[shown:] {
			fmt.Printf("%s  %s\n  %s\n", c.CreatedAt.Local().Format("Jan 2 15:04"), c.DisplayName(), c.Content)
		}
		shown = len(items)
		if !store.HasMore() {
			fmt.Printf("-- end of feed (%d comments) --\n", store.TotalCount())
		}
	}

	ctrl.Start()
	<-updates
	render()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == ":quit" || line == ":q":
			return

		case line == ":refresh":
			ctrl.Refresh()
			<-updates
			render()

		case strings.HasPrefix(line, ":post"):
			text := strings.TrimSpace(strings.TrimPrefix(line, ":post"))
			comment, err := gate.Submit(ctx, text)
			if err != nil {
				printSubmitError(err)
				continue
			}
			store.InsertSubmitted(*comment)
			fmt.Println("posted:")
			fmt.Printf("  %s  %s\n    %s\n", comment.CreatedAt.Local().Format("Jan 2 15:04"), comment.DisplayName(), comment.Content)
			shown++ // head insert; already printed

		case line == "":
			if !store.HasMore() {
				fmt.Println("-- end of feed --")
				continue
			}
			ctrl.RequestMore()
			<-updates
			render()

		default:
			fmt.Println("commands: ENTER, :post <text>, :refresh, :quit")
		}
	}
}

func printSubmitError(err error) {
	var ve *feedclient.ValidationError
	switch {
	case errors.As(err, &ve) && ve.Reason == feedclient.ReasonEmpty:
		fmt.Println("comment is empty")
	case errors.As(err, &ve) && ve.Reason == feedclient.ReasonTooLong:
		fmt.Printf("comment is over %d characters\n", feedclient.MaxContentLength)
	case errors.Is(err, feedclient.ErrLimitExceeded):
		fmt.Println("you have used all of your comments for this celebration")
	case errors.Is(err, feedclient.ErrSubmitInFlight):
		// Quietly ignore the double fire.
	default:
		fmt.Printf("could not post right now (%v), try again\n", err)
	}
}
