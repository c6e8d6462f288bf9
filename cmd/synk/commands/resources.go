package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/gateway"
)

// NewTasksCommand creates the tasks command with subcommands
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Shared task commands",
		Long:  "List, add, update and remove the couple's shared tasks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run: func(cmd *cobra.Command, args []string) {
			query, _ := cmd.Flags().GetString("query")

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			tasks, err := a.api.Tasks().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list tasks", "error", err)
			}
			for _, t := range tasks {
				if !t.MatchesQuery(query) {
					continue
				}
				fmt.Printf("%-8s %-10s %-9s %s\n", t.ID, t.Status, t.Priority, t.Title)
			}
		},
	}
	listCmd.Flags().String("query", "", "Filter by title or category")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			category, _ := cmd.Flags().GetString("category")
			priority, _ := cmd.Flags().GetString("priority")
			status, _ := cmd.Flags().GetString("status")
			description, _ := cmd.Flags().GetString("description")
			if title == "" {
				log.Fatal("Title is required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			task, err := a.api.Tasks().Create(ctx, gateway.CreateTaskForm{
				Title:       title,
				Category:    category,
				Priority:    entities.Priority(priority),
				Status:      entities.TaskStatus(status),
				Description: description,
			})
			if err != nil {
				a.logger.Fatalw("Failed to create task", "error", err)
			}
			fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
		},
	}
	addCmd.Flags().String("title", "", "Task title (required)")
	addCmd.Flags().String("category", "", "Task category")
	addCmd.Flags().String("priority", "medium", "Priority (low, medium, high)")
	addCmd.Flags().String("status", "Backlog", "Status (Backlog, Planning, Upcoming, Completed)")
	addCmd.Flags().String("description", "", "Task description")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var form gateway.UpdateTaskForm
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				form.Title = &title
			}
			if cmd.Flags().Changed("status") {
				raw, _ := cmd.Flags().GetString("status")
				status := entities.TaskStatus(raw)
				form.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				raw, _ := cmd.Flags().GetString("priority")
				priority := entities.Priority(raw)
				form.Priority = &priority
			}
			if cmd.Flags().Changed("progress") {
				progress, _ := cmd.Flags().GetInt("progress")
				form.Progress = &progress
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			task, err := a.api.Tasks().Update(ctx, entities.ID(args[0]), form)
			if err != nil {
				a.logger.Fatalw("Failed to update task", "error", err)
			}
			fmt.Printf("Updated task %s: %s\n", task.ID, task.Title)
		},
	}
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().String("status", "", "New status")
	updateCmd.Flags().String("priority", "", "New priority")
	updateCmd.Flags().Int("progress", 0, "New progress percentage")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Tasks().Delete(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to delete task", "error", err)
			}
			fmt.Println("Deleted")
		},
	}

	tasksCmd.AddCommand(listCmd, addCmd, updateCmd, removeCmd)
	return tasksCmd
}

// NewMilestonesCommand creates the milestones command with subcommands
func NewMilestonesCommand() *cobra.Command {
	milestonesCmd := &cobra.Command{
		Use:   "milestones",
		Short: "Relationship milestone commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List milestones",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			milestones, err := a.api.Milestones().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list milestones", "error", err)
			}
			for _, m := range milestones {
				fmt.Printf("%-8s %-10s %-12s %s\n", m.ID, m.Status, m.Date, m.Name)
			}
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a milestone",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			date, _ := cmd.Flags().GetString("date")
			status, _ := cmd.Flags().GetString("status")
			icon, _ := cmd.Flags().GetString("icon")
			if name == "" {
				log.Fatal("Name is required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			milestone, err := a.api.Milestones().Create(ctx, gateway.CreateMilestoneForm{
				Name:   name,
				Date:   date,
				Status: entities.MilestoneStatus(status),
				Icon:   icon,
			})
			if err != nil {
				a.logger.Fatalw("Failed to create milestone", "error", err)
			}
			fmt.Printf("Created milestone %s: %s\n", milestone.ID, milestone.Name)
		},
	}
	addCmd.Flags().String("name", "", "Milestone name (required)")
	addCmd.Flags().String("date", "", "Milestone date")
	addCmd.Flags().String("status", "Upcoming", "Status (Upcoming, Completed, Dreaming)")
	addCmd.Flags().String("icon", "", "Icon name")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a milestone",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Milestones().Delete(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to delete milestone", "error", err)
			}
			fmt.Println("Deleted")
		},
	}

	milestonesCmd.AddCommand(listCmd, addCmd, removeCmd)
	return milestonesCmd
}

// NewSuggestionsCommand creates the suggestions command with subcommands
func NewSuggestionsCommand() *cobra.Command {
	suggestionsCmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Date suggestion commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List suggestions",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			suggestions, err := a.api.Suggestions().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list suggestions", "error", err)
			}
			for _, s := range suggestions {
				fmt.Printf("%-8s %-15s %s\n", s.ID, s.SuggestedBy, s.Title)
			}
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Suggest a date idea",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			location, _ := cmd.Flags().GetString("location")
			category, _ := cmd.Flags().GetString("category")
			date, _ := cmd.Flags().GetString("date")
			if title == "" {
				log.Fatal("Title is required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			user, err := a.session.CurrentUser(ctx)
			if err != nil {
				a.logger.Fatalw("Not signed in", "error", err)
			}

			suggestion, err := a.api.Suggestions().Create(ctx, gateway.CreateSuggestionForm{
				Title:       title,
				SuggestedBy: user.DisplayName(),
				Date:        date,
				Description: description,
				Location:    location,
				Category:    category,
			})
			if err != nil {
				a.logger.Fatalw("Failed to create suggestion", "error", err)
			}
			fmt.Printf("Created suggestion %s: %s\n", suggestion.ID, suggestion.Title)
		},
	}
	addCmd.Flags().String("title", "", "Suggestion title (required)")
	addCmd.Flags().String("description", "", "Description")
	addCmd.Flags().String("location", "", "Location")
	addCmd.Flags().String("category", "", "Category")
	addCmd.Flags().String("date", "", "Proposed date")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a suggestion",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Suggestions().Delete(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to delete suggestion", "error", err)
			}
			fmt.Println("Deleted")
		},
	}

	suggestionsCmd.AddCommand(listCmd, addCmd, removeCmd)
	return suggestionsCmd
}

// NewCollectionsCommand creates the collections command with subcommands
func NewCollectionsCommand() *cobra.Command {
	collectionsCmd := &cobra.Command{
		Use:   "collections",
		Short: "Task collection commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			collections, err := a.api.Collections().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list collections", "error", err)
			}
			for _, c := range collections {
				fmt.Printf("%-8s %s\n", c.ID, c.Name)
			}
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a collection",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			icon, _ := cmd.Flags().GetString("icon")
			if name == "" {
				log.Fatal("Name is required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			collection, err := a.api.Collections().Create(ctx, gateway.CreateCollectionForm{
				Name: name,
				Icon: icon,
			})
			if err != nil {
				a.logger.Fatalw("Failed to create collection", "error", err)
			}
			fmt.Printf("Created collection %s: %s\n", collection.ID, collection.Name)
		},
	}
	addCmd.Flags().String("name", "", "Collection name (required)")
	addCmd.Flags().String("icon", "", "Icon name")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Collections().Delete(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to delete collection", "error", err)
			}
			fmt.Println("Deleted")
		},
	}

	collectionsCmd.AddCommand(listCmd, addCmd, removeCmd)
	return collectionsCmd
}

// NewMemoriesCommand creates the memories command with subcommands
func NewMemoriesCommand() *cobra.Command {
	memoriesCmd := &cobra.Command{
		Use:   "memories",
		Short: "Shared memory commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Run: func(cmd *cobra.Command, args []string) {
			favoritesOnly, _ := cmd.Flags().GetBool("favorites")

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			memories, err := a.api.Memories().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list memories", "error", err)
			}
			for _, m := range memories {
				if favoritesOnly && !m.Favorite {
					continue
				}
				marker := " "
				if m.Favorite {
					marker = "*"
				}
				fmt.Printf("%s %-8s %-12s %s\n", marker, m.ID, m.Date, m.Title)
			}
		},
	}
	listCmd.Flags().Bool("favorites", false, "Only show favorites")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a memory",
		Run: func(cmd *cobra.Command, args []string) {
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			date, _ := cmd.Flags().GetString("date")
			tags, _ := cmd.Flags().GetString("tags")
			if title == "" {
				log.Fatal("Title is required")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			form := gateway.CreateMemoryForm{
				Title:       title,
				Description: description,
				Date:        date,
			}
			if tags != "" {
				form.Tags = strings.Split(tags, ",")
			}

			memory, err := a.api.Memories().Create(ctx, form)
			if err != nil {
				a.logger.Fatalw("Failed to create memory", "error", err)
			}
			fmt.Printf("Created memory %s: %s\n", memory.ID, memory.Title)
		},
	}
	addCmd.Flags().String("title", "", "Memory title (required)")
	addCmd.Flags().String("description", "", "Description")
	addCmd.Flags().String("date", "", "Memory date")
	addCmd.Flags().String("tags", "", "Comma-separated tags")

	favoriteCmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a memory's favorite flag",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			memory, err := a.api.Memories().ToggleFavorite(ctx, entities.ID(args[0]))
			if err != nil {
				a.logger.Fatalw("Failed to toggle favorite", "error", err)
			}
			if memory.Favorite {
				fmt.Printf("Favorited %s\n", memory.Title)
			} else {
				fmt.Printf("Unfavorited %s\n", memory.Title)
			}
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Memories().Delete(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to delete memory", "error", err)
			}
			fmt.Println("Deleted")
		},
	}

	memoriesCmd.AddCommand(listCmd, addCmd, favoriteCmd, removeCmd)
	return memoriesCmd
}

// NewInboxCommand creates the inbox command with subcommands
func NewInboxCommand() *cobra.Command {
	inboxCmd := &cobra.Command{
		Use:   "inbox",
		Short: "Inbox commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List inbox items",
		Run: func(cmd *cobra.Command, args []string) {
			unreadOnly, _ := cmd.Flags().GetBool("unread")

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			var items []entities.InboxItem
			var err error
			if unreadOnly {
				items, err = a.api.Inbox().Unread(ctx)
			} else {
				items, err = a.api.Inbox().List(ctx)
			}
			if err != nil {
				a.logger.Fatalw("Failed to list inbox", "error", err)
			}
			for _, item := range items {
				marker := " "
				if !item.Read {
					marker = "*"
				}
				fmt.Printf("%s %-8s %-20s %s\n", marker, item.ID, item.Type, item.CreatedAt)
			}
		},
	}
	listCmd.Flags().Bool("unread", false, "Only show unread items")

	readCmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark an inbox item as read",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if _, err := a.api.Inbox().MarkAsRead(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to mark as read", "error", err)
			}
			fmt.Println("Marked as read")
		},
	}

	readAllCmd := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every inbox item as read",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Inbox().MarkAllAsRead(ctx); err != nil {
				a.logger.Fatalw("Failed to mark all as read", "error", err)
			}
			fmt.Println("Marked all as read")
		},
	}

	reactCmd := &cobra.Command{
		Use:   "react <id>",
		Short: "React to an inbox item",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if _, err := a.api.Inbox().React(ctx, entities.ID(args[0])); err != nil {
				a.logger.Fatalw("Failed to react", "error", err)
			}
			fmt.Println("Reacted")
		},
	}

	inboxCmd.AddCommand(listCmd, readCmd, readAllCmd, reactCmd)
	return inboxCmd
}

// NewCoupleCommand creates the couple command with subcommands
func NewCoupleCommand() *cobra.Command {
	coupleCmd := &cobra.Command{
		Use:   "couple",
		Short: "Pairing commands",
		Long:  "Show the current pairing, generate coupling codes, and pair or unpair accounts",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current pairing",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			couple, err := a.api.Couple().Get(ctx)
			if err != nil {
				if errors.Is(err, entities.ErrNotCoupled) {
					fmt.Println("Not coupled")
					return
				}
				a.logger.Fatalw("Failed to fetch couple", "error", err)
			}
			fmt.Printf("Coupled: %s + %s\n", couple.User1.DisplayName(), couple.User2.DisplayName())
		},
	}

	codeCmd := &cobra.Command{
		Use:   "code",
		Short: "Generate a coupling code",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			code, err := a.api.CouplingCodes().Create(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to create coupling code", "error", err)
			}
			fmt.Printf("Coupling code: %s (expires %s)\n", code.Code, code.ExpiresAt)
		},
	}

	codesCmd := &cobra.Command{
		Use:   "codes",
		Short: "List issued coupling codes",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			codes, err := a.api.CouplingCodes().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list coupling codes", "error", err)
			}
			for _, code := range codes {
				fmt.Printf("%-12s expires %s\n", code.Code, code.ExpiresAt)
			}
		},
	}

	pairCmd := &cobra.Command{
		Use:   "pair <code>",
		Short: "Pair with a partner using their coupling code",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.CouplingCodes().Use(ctx, args[0]); err != nil {
				a.logger.Fatalw("Failed to pair", "error", err)
			}
			fmt.Println("Paired")
		},
	}

	unpairCmd := &cobra.Command{
		Use:   "unpair",
		Short: "Dissolve the current pairing",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Couple().Uncouple(ctx); err != nil {
				a.logger.Fatalw("Failed to unpair", "error", err)
			}
			fmt.Println("Unpaired")
		},
	}

	coupleCmd.AddCommand(showCmd, codeCmd, codesCmd, pairCmd, unpairCmd)
	return coupleCmd
}

// NewDailyCommand creates the daily-connection command with subcommands
func NewDailyCommand() *cobra.Command {
	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Daily connection prompt commands",
	}

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's prompt and answers",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			connection, err := a.api.DailyConnections().Today(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to fetch today's prompt", "error", err)
			}
			fmt.Printf("%s (%s)\n", connection.Prompt, connection.Date)
			for _, answer := range connection.Answers {
				fmt.Printf("  %s: %s\n", answer.Author, answer.Text)
			}
		},
	}

	answerCmd := &cobra.Command{
		Use:   "answer <id> <text>",
		Short: "Answer a daily prompt",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if _, err := a.api.DailyConnections().SubmitAnswer(ctx, entities.ID(args[0]), args[1]); err != nil {
				a.logger.Fatalw("Failed to submit answer", "error", err)
			}
			fmt.Println("Answer submitted")
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List past prompts and answers",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			connections, err := a.api.DailyConnections().List(ctx)
			if err != nil {
				a.logger.Fatalw("Failed to list daily prompts", "error", err)
			}
			for _, connection := range connections {
				fmt.Printf("%s  %s (%d answers)\n", connection.Date, connection.Prompt, len(connection.Answers))
			}
		},
	}

	dailyCmd.AddCommand(todayCmd, answerCmd, historyCmd)
	return dailyCmd
}

// NewAccountCommand creates the account command with subcommands
func NewAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete the account",
		Run: func(cmd *cobra.Command, args []string) {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				log.Fatal("Password is required to delete the account")
			}

			a := newApp()
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := a.api.Account().Delete(ctx, password); err != nil {
				a.logger.Fatalw("Failed to delete account", "error", err)
			}
			if err := a.session.Logout(ctx); err != nil {
				a.logger.Warnw("Failed to clear stored session", "error", err)
			}
			fmt.Println("Account deleted")
		},
	}
	deleteCmd.Flags().String("password", "", "Current password (required)")

	accountCmd.AddCommand(deleteCmd)
	return accountCmd
}
