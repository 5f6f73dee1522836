package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

const (
	attrUserID        = "userId"
	attrTodoID        = "todoId"
	attrName          = "name"
	attrDueDate       = "dueDate"
	attrDone          = "done"
	attrAttachmentURL = "attachmentUrl"
)

// DynamoDBStore keeps todos in a DynamoDB table keyed by userId (hash) and todoId (range).
type DynamoDBStore struct {
	client         dynamodbiface.DynamoDBAPI
	table          string
	createdAtIndex string
}

// NewDynamoDBStore creates a store on the given table. createdAtIndex names an optional
// local secondary index on createdAt used to list newest first; empty means the base table.
func NewDynamoDBStore(client dynamodbiface.DynamoDBAPI, table, createdAtIndex string) *DynamoDBStore {
	return &DynamoDBStore{
		client:         client,
		table:          table,
		createdAtIndex: createdAtIndex,
	}
}

// ListByUser returns one page of the user's todos, newest first.
func (s *DynamoDBStore) ListByUser(ctx context.Context, userID string) ([]models.TodoItem, error) {
	logger.Info(ctx, "Getting todos for user", "user_id", userID)

	keyCondition := expression.Key(attrUserID).Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, readErr("build list expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if s.createdAtIndex != "" {
		input.IndexName = aws.String(s.createdAtIndex)
	}

	result, err := s.client.QueryWithContext(ctx, input)
	if err != nil {
		return nil, readErr("query todos", err)
	}

	todos := make([]models.TodoItem, 0, len(result.Items))
	if err := dynamodbattribute.UnmarshalListOfMaps(result.Items, &todos); err != nil {
		return nil, readErr("unmarshal todos", err)
	}
	return todos, nil
}

// Create puts the item unconditionally; todoId is freshly generated by the caller.
func (s *DynamoDBStore) Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error) {
	logger.Info(ctx, "Creating todo", "todo_id", item.TodoID)

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		return nil, writeErr("marshal todo", err)
	}

	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return nil, writeErr("put todo", err)
	}

	out := *item
	return &out, nil
}

// Update overwrites name, dueDate and done of an existing item and returns the new state.
func (s *DynamoDBStore) Update(ctx context.Context, userID, todoID string, req models.UpdateTodoRequest) (*models.TodoItem, error) {
	logger.Info(ctx, "Updating todo", "todo_id", todoID)

	update := expression.Set(expression.Name(attrName), expression.Value(req.Name)).
		Set(expression.Name(attrDueDate), expression.Value(req.DueDate)).
		Set(expression.Name(attrDone), expression.Value(req.IsDone()))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(itemExists()).
		Build()
	if err != nil {
		return nil, writeErr("build update expression", err)
	}

	result, err := s.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       itemKey(userID, todoID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              aws.String(dynamodb.ReturnValueAllNew),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrItemNotFound
		}
		return nil, writeErr("update todo", err)
	}

	var item models.TodoItem
	if err := dynamodbattribute.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, readErr("unmarshal updated todo", err)
	}
	return &item, nil
}

// Delete removes an existing item and returns its attributes as they were before deletion.
func (s *DynamoDBStore) Delete(ctx context.Context, userID, todoID string) (*models.TodoItem, error) {
	logger.Info(ctx, "Deleting todo", "todo_id", todoID)

	expr, err := expression.NewBuilder().WithCondition(itemExists()).Build()
	if err != nil {
		return nil, writeErr("build delete expression", err)
	}

	result, err := s.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.table),
		Key:                       itemKey(userID, todoID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              aws.String(dynamodb.ReturnValueAllOld),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrItemNotFound
		}
		return nil, writeErr("delete todo", err)
	}

	var item models.TodoItem
	if err := dynamodbattribute.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, readErr("unmarshal deleted todo", err)
	}
	return &item, nil
}

// AttachReference sets attachmentUrl on an existing item.
func (s *DynamoDBStore) AttachReference(ctx context.Context, userID, todoID, url string) error {
	logger.Info(ctx, "Adding attachment to todo", "todo_id", todoID)

	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name(attrAttachmentURL), expression.Value(url))).
		WithCondition(itemExists()).
		Build()
	if err != nil {
		return writeErr("build attachment expression", err)
	}

	_, err = s.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       itemKey(userID, todoID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrItemNotFound
		}
		return writeErr("attach reference", err)
	}
	return nil
}

// Ping checks that the table is reachable.
func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return readErr(fmt.Sprintf("describe table %s", s.table), err)
	}
	return nil
}

func itemKey(userID, todoID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		attrUserID: {S: aws.String(userID)},
		attrTodoID: {S: aws.String(todoID)},
	}
}

func itemExists() expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name(attrTodoID))
}

func isConditionFailed(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}
