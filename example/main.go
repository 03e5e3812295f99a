package main

import (
	"context"
	"fmt"
	"log"
	"time"

	sheetdesk "github.com/ideamans/go-sheetdesk"
	"github.com/ideamans/go-sheetdesk/adapters/excel"
)

func main() {
	// Sheet order sets the tab ids the default layouts expect: Sheet1 is 0, Sheet2 is 1.
	adapter, err := excel.New(&excel.Config{
		Dir: "./example_data",
		Sheets: []excel.SheetSpec{
			{Name: "Sheet1", Header: sheetdesk.TicketSchema.Names()},
			{Name: "Sheet2", Header: sheetdesk.QuoteSchema.Names()},
			{Name: "Archive", Header: sheetdesk.TicketSchema.Names()},
			{Name: "Archive2", Header: sheetdesk.QuoteSchema.Names()},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create Excel adapter: %v", err)
	}

	client := sheetdesk.New(adapter, excel.DefaultClientConfig())
	tickets := sheetdesk.NewTicketTable(client, "shop", sheetdesk.DefaultTicketLayout)
	quotes := sheetdesk.NewQuoteTable(client, "shop", sheetdesk.DefaultQuoteLayout)
	ctx := context.Background()

	// 1. Add some tickets
	fmt.Println("Adding tickets...")
	for i, name := range []string{"Dupont", "Martin", "Bernard"} {
		ticket := &sheetdesk.Ticket{
			Status:      sheetdesk.TicketStatuses[i],
			TermsSigned: sheetdesk.Yes,
			Client:      name,
			Date:        time.Now().AddDate(0, 0, -i),
			Phone:       "06.12.34.56.78",
			Equipment:   "PC portable",
			Accepted:    sheetdesk.No,
			Notified:    sheetdesk.No,
		}
		if err := tickets.Create(ctx, ticket); err != nil {
			log.Fatalf("Failed to create ticket: %v", err)
		}
	}

	// 2. Update the second ticket
	fmt.Println("\nUpdating row 3...")
	ticket, err := tickets.Get(ctx, 3)
	if err != nil {
		log.Fatalf("Failed to get ticket: %v", err)
	}
	ticket.Status = sheetdesk.StatusReady
	ticket.Price = "49,90"
	if err := tickets.Update(ctx, 3, ticket); err != nil {
		log.Fatalf("Failed to update ticket: %v", err)
	}

	// 3. Query tickets that are not done yet
	rows, err := tickets.Rows(ctx)
	if err != nil {
		log.Fatalf("Failed to list tickets: %v", err)
	}
	open, err := sheetdesk.TicketSchema.ApplyQuery(rows, sheetdesk.Query{
		Conditions: []sheetdesk.Condition{
			{Column: "statut", Operator: "in", Values: []string{sheetdesk.StatusTodo, sheetdesk.StatusInProgress}},
		},
	})
	if err != nil {
		log.Fatalf("Failed to query tickets: %v", err)
	}
	fmt.Printf("\nOpen tickets (%d):\n", len(open))
	for _, row := range open {
		fmt.Printf("  row %d: %v\n", row.Index, row.Values)
	}

	// 4. Archive the first ticket
	fmt.Println("\nArchiving row 2...")
	if err := tickets.Archive(ctx, 2); err != nil {
		log.Fatalf("Failed to archive ticket: %v", err)
	}
	archived, err := tickets.ArchiveRows(ctx)
	if err != nil {
		log.Fatalf("Failed to list archive: %v", err)
	}
	fmt.Printf("Archived tickets: %d\n", len(archived))

	// 5. Add a quote
	fmt.Println("\nAdding a quote...")
	quote := &sheetdesk.Quote{
		Client:      "Martin",
		Date:        time.Now(),
		Description: "Remplacement écran",
		Quantity:    "1",
		Unit:        "u",
		UnitPriceHT: "120",
		TotalHT:     "120",
		VAT:         "24",
		TotalTTC:    "144",
	}
	if err := quotes.Create(ctx, quote); err != nil {
		log.Fatalf("Failed to create quote: %v", err)
	}

	fmt.Printf("\nWorkbook saved to %s\n", adapter.Path("shop"))
}
