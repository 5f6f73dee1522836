package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-San96/c4-final-project/internal/models"
)

const testTable = "Todos-test"

// fakeDynamoDB records the last input of each call and returns canned results.
type fakeDynamoDB struct {
	dynamodbiface.DynamoDBAPI

	queryIn    *dynamodb.QueryInput
	queryOut   *dynamodb.QueryOutput
	queryPages []*dynamodb.QueryOutput
	startKeys  []map[string]*dynamodb.AttributeValue
	putIn      *dynamodb.PutItemInput
	updateIn   *dynamodb.UpdateItemInput
	updateOut  *dynamodb.UpdateItemOutput
	deleteIn   *dynamodb.DeleteItemInput
	deleteOut  *dynamodb.DeleteItemOutput
	err        error
}

func (f *fakeDynamoDB) QueryWithContext(_ aws.Context, in *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	f.queryIn = in
	f.startKeys = append(f.startKeys, in.ExclusiveStartKey)
	if len(f.queryPages) > 0 {
		page := f.queryPages[0]
		f.queryPages = f.queryPages[1:]
		return page, f.err
	}
	return f.queryOut, f.err
}

func (f *fakeDynamoDB) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.putIn = in
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeDynamoDB) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	f.updateIn = in
	return f.updateOut, f.err
}

func (f *fakeDynamoDB) DeleteItemWithContext(_ aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	f.deleteIn = in
	return f.deleteOut, f.err
}

func (f *fakeDynamoDB) DescribeTableWithContext(_ aws.Context, in *dynamodb.DescribeTableInput, _ ...request.Option) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, f.err
}

func conditionFailed() error {
	return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
}

func marshalTodo(t *testing.T, item models.TodoItem) map[string]*dynamodb.AttributeValue {
	t.Helper()
	av, err := dynamodbattribute.MarshalMap(item)
	require.NoError(t, err)
	return av
}

func expressionStrings(values map[string]*dynamodb.AttributeValue) []string {
	var out []string
	for _, v := range values {
		if v.S != nil {
			out = append(out, *v.S)
		}
	}
	return out
}

func TestDynamoDBStore_ListByUser(t *testing.T) {
	newer := models.TodoItem{UserID: "u1", TodoID: "b", Name: "newer", CreatedAt: "2024-02-01T00:00:00.000Z"}
	older := models.TodoItem{UserID: "u1", TodoID: "a", Name: "older", CreatedAt: "2024-01-01T00:00:00.000Z"}
	fake := &fakeDynamoDB{queryOut: &dynamodb.QueryOutput{
		Items: []map[string]*dynamodb.AttributeValue{marshalTodo(t, newer), marshalTodo(t, older)},
	}}
	store := NewDynamoDBStore(fake, testTable, "CreatedAtIndex")

	todos, err := store.ListByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []models.TodoItem{newer, older}, todos)
	assert.Equal(t, testTable, aws.StringValue(fake.queryIn.TableName))
	assert.Equal(t, "CreatedAtIndex", aws.StringValue(fake.queryIn.IndexName))
	assert.False(t, aws.BoolValue(fake.queryIn.ScanIndexForward))
	assert.Contains(t, expressionStrings(fake.queryIn.ExpressionAttributeValues), "u1")
}

func TestDynamoDBStore_ListByUser_NoIndexAndEmpty(t *testing.T) {
	fake := &fakeDynamoDB{queryOut: &dynamodb.QueryOutput{}}
	store := NewDynamoDBStore(fake, testTable, "")

	todos, err := store.ListByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
	assert.Nil(t, fake.queryIn.IndexName)
}

func TestDynamoDBStore_ListByUser_SinglePage(t *testing.T) {
	fake := &fakeDynamoDB{queryPages: []*dynamodb.QueryOutput{
		{
			Items:            []map[string]*dynamodb.AttributeValue{marshalTodo(t, models.TodoItem{UserID: "alice", TodoID: "t2", Name: "b"})},
			LastEvaluatedKey: itemKey("alice", "t2"),
		},
		{
			Items: []map[string]*dynamodb.AttributeValue{marshalTodo(t, models.TodoItem{UserID: "alice", TodoID: "t1", Name: "a"})},
		},
	}}
	store := NewDynamoDBStore(fake, "Todos", "")

	todos, err := store.ListByUser(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "t2", todos[0].TodoID)
	require.Len(t, fake.startKeys, 1)
	assert.Nil(t, fake.startKeys[0])
	assert.Len(t, fake.queryPages, 1)
}

func TestDynamoDBStore_ListByUser_QueryError(t *testing.T) {
	fake := &fakeDynamoDB{err: errors.New("connection reset")}
	store := NewDynamoDBStore(fake, testTable, "")

	_, err := store.ListByUser(context.Background(), "u1")

	assert.ErrorIs(t, err, ErrStoreRead)
	assert.NotErrorIs(t, err, ErrStoreWrite)
}

func TestDynamoDBStore_Create(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := NewDynamoDBStore(fake, testTable, "")
	item := &models.TodoItem{UserID: "u1", TodoID: "t1", Name: "Buy milk", CreatedAt: "2024-01-01T00:00:00.000Z"}

	created, err := store.Create(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, item, created)
	assert.Nil(t, fake.putIn.ConditionExpression)
	assert.Equal(t, "Buy milk", aws.StringValue(fake.putIn.Item["name"].S))
	assert.False(t, aws.BoolValue(fake.putIn.Item["done"].BOOL))
	_, hasAttachment := fake.putIn.Item["attachmentUrl"]
	assert.False(t, hasAttachment)
}

func TestDynamoDBStore_Create_Error(t *testing.T) {
	fake := &fakeDynamoDB{err: awserr.New(dynamodb.ErrCodeProvisionedThroughputExceededException, "slow down", nil)}
	store := NewDynamoDBStore(fake, testTable, "")

	_, err := store.Create(context.Background(), &models.TodoItem{UserID: "u1", TodoID: "t1", Name: "x"})

	assert.ErrorIs(t, err, ErrStoreWrite)
}

func TestDynamoDBStore_Update(t *testing.T) {
	updated := models.TodoItem{UserID: "u1", TodoID: "t1", Name: "X", DueDate: "2024-01-01", Done: true, CreatedAt: "2023-12-01T00:00:00.000Z"}
	fake := &fakeDynamoDB{updateOut: &dynamodb.UpdateItemOutput{Attributes: marshalTodo(t, updated)}}
	store := NewDynamoDBStore(fake, testTable, "")
	done := true

	item, err := store.Update(context.Background(), "u1", "t1", models.UpdateTodoRequest{Name: "X", DueDate: "2024-01-01", Done: &done})

	require.NoError(t, err)
	assert.Equal(t, &updated, item)
	assert.Equal(t, dynamodb.ReturnValueAllNew, aws.StringValue(fake.updateIn.ReturnValues))
	assert.Equal(t, "u1", aws.StringValue(fake.updateIn.Key["userId"].S))
	assert.Equal(t, "t1", aws.StringValue(fake.updateIn.Key["todoId"].S))
	assert.NotEmpty(t, aws.StringValue(fake.updateIn.ConditionExpression))
	assert.ElementsMatch(t, []string{"X", "2024-01-01"}, expressionStrings(fake.updateIn.ExpressionAttributeValues))
}

func TestDynamoDBStore_Update_NotFound(t *testing.T) {
	fake := &fakeDynamoDB{err: conditionFailed()}
	store := NewDynamoDBStore(fake, testTable, "")

	_, err := store.Update(context.Background(), "u1", "missing", models.UpdateTodoRequest{Name: "X"})

	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDynamoDBStore_Delete(t *testing.T) {
	prior := models.TodoItem{UserID: "u1", TodoID: "t1", Name: "with file", AttachmentURL: "https://bucket.s3.amazonaws.com/t1"}
	fake := &fakeDynamoDB{deleteOut: &dynamodb.DeleteItemOutput{Attributes: marshalTodo(t, prior)}}
	store := NewDynamoDBStore(fake, testTable, "")

	item, err := store.Delete(context.Background(), "u1", "t1")

	require.NoError(t, err)
	assert.Equal(t, prior.AttachmentURL, item.AttachmentURL)
	assert.Equal(t, dynamodb.ReturnValueAllOld, aws.StringValue(fake.deleteIn.ReturnValues))
	assert.NotEmpty(t, aws.StringValue(fake.deleteIn.ConditionExpression))
}

func TestDynamoDBStore_Delete_NotFound(t *testing.T) {
	fake := &fakeDynamoDB{err: conditionFailed()}
	store := NewDynamoDBStore(fake, testTable, "")

	_, err := store.Delete(context.Background(), "u1", "missing")

	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDynamoDBStore_AttachReference(t *testing.T) {
	fake := &fakeDynamoDB{updateOut: &dynamodb.UpdateItemOutput{}}
	store := NewDynamoDBStore(fake, testTable, "")

	err := store.AttachReference(context.Background(), "u1", "t1", "https://bucket.s3.amazonaws.com/t1")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://bucket.s3.amazonaws.com/t1"}, expressionStrings(fake.updateIn.ExpressionAttributeValues))
	assert.NotEmpty(t, aws.StringValue(fake.updateIn.ConditionExpression))
}

func TestDynamoDBStore_AttachReference_Errors(t *testing.T) {
	store := NewDynamoDBStore(&fakeDynamoDB{err: conditionFailed()}, testTable, "")
	assert.ErrorIs(t, store.AttachReference(context.Background(), "u1", "missing", "url"), ErrItemNotFound)

	store = NewDynamoDBStore(&fakeDynamoDB{err: errors.New("timeout")}, testTable, "")
	err := store.AttachReference(context.Background(), "u1", "t1", "url")
	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.NotErrorIs(t, err, ErrItemNotFound)
}
