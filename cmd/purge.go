package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest/internal/board"
	"github.com/tasknest/tasknest/internal/trello"
)

func newPurgeCmd() *cobra.Command {
	var (
		listName string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all tasks in one of the board's lists",
		Long: `Delete every card in the named list of the configured board.

This permanently removes the cards from Trello, including their checklists.
Nothing is deleted unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete tasks without --yes")
			}

			trelloConfig, err := loadTrelloConfig()
			if err != nil {
				return err
			}
			if listName == "" {
				listName = trelloConfig.Lists.Done
			}

			client, err := trello.NewClient(trelloConfig.Key, trelloConfig.Token)
			if err != nil {
				return fmt.Errorf("failed to create Trello client: %w", err)
			}
			resolver := board.NewResolver(client, trelloConfig.BoardName, trelloConfig.Lists)

			ctx := context.Background()
			listID, err := resolver.ListID(ctx, listName)
			if err != nil {
				return err
			}

			cards, err := client.ListCards(ctx, listID)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			for _, card := range cards {
				if err := client.DeleteCard(ctx, card.ID); err != nil {
					return fmt.Errorf("failed to delete task %q: %w", card.Name, err)
				}
				log.Printf("Deleted task %q", card.Name)
			}

			fmt.Printf("All tasks in '%s' on board '%s' have been deleted (%d removed).\n",
				listName, trelloConfig.BoardName, len(cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&listName, "list", "", "Name of the list to purge (default: the 'Done' list)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion; nothing is deleted without this flag")

	return cmd
}
