// Seed adds todos for one user through the configured store. Run from project root: go run ./scripts/seed -user alice -n 100
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/A-San96/c4-final-project/internal/awsclient"
	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/internal/database"
	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/internal/repository"
	"github.com/A-San96/c4-final-project/internal/service"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "seed-user", "owner of the seeded todos")
	total := flag.Int("n", 100, "number of todos to create")
	createTable := flag.Bool("create-table", false, "create the DynamoDB table first (dynamodb driver only)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	var store service.TodoStore
	switch cfg.StoreDriver {
	case config.DriverDynamoDB:
		sess, err := awsclient.NewSession(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "AWS session failed:", err)
			os.Exit(1)
		}
		client := awsclient.DynamoDB(sess)
		if *createTable {
			if err := createTodosTable(ctx, client, cfg); err != nil {
				fmt.Fprintln(os.Stderr, "Create table failed:", err)
				os.Exit(1)
			}
		}
		store = repository.NewDynamoDBStore(client, cfg.TodosTable, cfg.TodosCreatedAtIndex)
	case config.DriverPostgres:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "DATABASE_URL not set or DB connection failed:", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
			fmt.Fprintln(os.Stderr, "Schema failed:", err)
			os.Exit(1)
		}
		store = repository.NewPostgresStore(db)
	default:
		fmt.Fprintf(os.Stderr, "Nothing to seed for store driver %q\n", cfg.StoreDriver)
		os.Exit(1)
	}

	todos := service.NewTodoService(store)
	start := time.Now()
	for i := 1; i <= *total; i++ {
		req := models.CreateTodoRequest{
			Name:    fmt.Sprintf("Todo %d", i),
			DueDate: start.AddDate(0, 0, i).Format(time.DateOnly),
		}
		if _, err := todos.CreateTodo(ctx, req, *userID); err != nil {
			fmt.Fprintln(os.Stderr, "\nInsert failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rInserted %d / %d", i, *total)
	}

	fmt.Printf("\nDone: %d todos for %s in %v\n", *total, *userID, time.Since(start))
}

func createTodosTable(ctx context.Context, client *dynamodb.DynamoDB, cfg *config.Config) error {
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(cfg.TodosTable),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String("userId"), AttributeType: aws.String("S")},
			{AttributeName: aws.String("todoId"), AttributeType: aws.String("S")},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("userId"), KeyType: aws.String("HASH")},
			{AttributeName: aws.String("todoId"), KeyType: aws.String("RANGE")},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	}
	if cfg.TodosCreatedAtIndex != "" {
		input.AttributeDefinitions = append(input.AttributeDefinitions,
			&dynamodb.AttributeDefinition{AttributeName: aws.String("createdAt"), AttributeType: aws.String("S")})
		input.LocalSecondaryIndexes = []*dynamodb.LocalSecondaryIndex{{
			IndexName: aws.String(cfg.TodosCreatedAtIndex),
			KeySchema: []*dynamodb.KeySchemaElement{
				{AttributeName: aws.String("userId"), KeyType: aws.String("HASH")},
				{AttributeName: aws.String("createdAt"), KeyType: aws.String("RANGE")},
			},
			Projection: &dynamodb.Projection{ProjectionType: aws.String(dynamodb.ProjectionTypeAll)},
		}}
	}

	if _, err := client.CreateTableWithContext(ctx, input); err != nil {
		return err
	}
	return client.WaitUntilTableExistsWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(cfg.TodosTable)})
}
