package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"lexora-chat/internal/domain"
)

const (
	skPrefixExchange = "EXCH#"
	skMeta           = "META#"
	ttlDuration      = 30 * 24 * time.Hour
)

// dynamodbAPI is the minimal DynamoDB interface required by ConversationStore.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// ConversationStore keeps per-conversation exchanges and a META# record with
// the running turn count in a single DynamoDB table.
type ConversationStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// NewConversationStore creates a store on tableName.
func NewConversationStore(api dynamodbAPI, tableName string) (*ConversationStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &ConversationStore{api: api, tableName: tableName, now: time.Now}, nil
}

func convPK(conversationID string) string {
	return "CONV#" + conversationID
}

func exchangeSK(ts time.Time) string {
	return skPrefixExchange + ts.UTC().Format(time.RFC3339Nano)
}

// GetHistory returns up to limit chat turns from the most recent complete
// exchanges, oldest first. Each exchange yields a user and an assistant turn.
func (s *ConversationStore) GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.ChatTurn, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		FilterExpression:       aws.String("#status = :complete"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":       &types.AttributeValueMemberS{Value: convPK(conversationID)},
			":prefix":   &types.AttributeValueMemberS{Value: skPrefixExchange},
			":complete": &types.AttributeValueMemberS{Value: domain.StatusComplete},
		},
		// Newest first so the limit keeps the most recent context.
		ScanIndexForward: aws.Bool(false),
	}
	want := 0
	if limit > 0 {
		want = (limit + 1) / 2
		in.Limit = aws.Int32(int32(want))
	}

	// Limit applies before the status filter, so a page can come back short
	// when recent exchanges were fallbacks. Keep paging until enough complete
	// exchanges are collected or the partition is exhausted.
	var exchanges []domain.Exchange
	for {
		out, err := s.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("repository: GetHistory query: %w", err)
		}
		if out == nil {
			break
		}
		for _, item := range out.Items {
			ex, err := itemToExchange(item)
			if err != nil {
				return nil, fmt.Errorf("repository: GetHistory unmarshal: %w", err)
			}
			// The filter runs server side; fakes and older items may still carry fallbacks.
			if ex.Status != domain.StatusComplete {
				continue
			}
			exchanges = append(exchanges, ex)
		}
		if len(out.LastEvaluatedKey) == 0 || (want > 0 && len(exchanges) >= want) {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	if want > 0 && len(exchanges) > want {
		exchanges = exchanges[:want]
	}

	turns := make([]domain.ChatTurn, 0, 2*len(exchanges))
	for i := len(exchanges) - 1; i >= 0; i-- {
		turns = append(turns,
			domain.ChatTurn{Role: domain.RoleUser, Content: exchanges[i].UserMessage},
			domain.ChatTurn{Role: domain.RoleAssistant, Content: exchanges[i].Reply},
		)
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// GetConversationTurnCount returns the persisted turn count for a conversation.
func (s *ConversationStore) GetConversationTurnCount(ctx context.Context, conversationID string) (int, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: convPK(conversationID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("repository: GetConversationTurnCount get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return 0, nil
	}

	turns, err := intAttr(out.Item, "turns")
	if err != nil {
		return 0, fmt.Errorf("repository: GetConversationTurnCount decode turns: %w", err)
	}
	return turns, nil
}

// SaveExchange writes the exchange and the updated META# record in one
// transaction. turns is the new turn count after this exchange.
func (s *ConversationStore) SaveExchange(ctx context.Context, ex domain.Exchange, turns int) error {
	if strings.TrimSpace(ex.ConversationID) == "" {
		return errors.New("repository: SaveExchange: conversation id is required")
	}
	now := s.now().UTC()
	ttl := now.Add(ttlDuration).Unix()
	ex.PK = convPK(ex.ConversationID)
	ex.SK = exchangeSK(now)
	ex.TTL = ttl
	meta := domain.ConversationMeta{
		PK:             ex.PK,
		SK:             skMeta,
		ConversationID: ex.ConversationID,
		CaseID:         ex.CaseID,
		LastActivity:   now.Format(time.RFC3339),
		Turns:          turns,
		TTL:            ttl,
	}

	_, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                exchangeItem(ex),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(s.tableName),
					Item:      metaItem(meta),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SaveExchange: %w", err)
	}
	return nil
}

func itemToExchange(item map[string]types.AttributeValue) (domain.Exchange, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Exchange{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Exchange{}, err
	}
	userMessage, err := strAttr(item, "userMessage")
	if err != nil {
		return domain.Exchange{}, err
	}
	reply, _ := strAttr(item, "reply")
	status, _ := strAttr(item, "status")
	conversationID, _ := strAttr(item, "conversationId")
	caseID, _ := strAttr(item, "caseId")
	language, _ := strAttr(item, "language")

	return domain.Exchange{
		PK:             pk,
		SK:             sk,
		ConversationID: conversationID,
		CaseID:         caseID,
		Language:       language,
		UserMessage:    userMessage,
		Reply:          reply,
		Status:         status,
	}, nil
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: ex.PK},
		"SK":             &types.AttributeValueMemberS{Value: ex.SK},
		"conversationId": &types.AttributeValueMemberS{Value: ex.ConversationID},
		"language":       &types.AttributeValueMemberS{Value: ex.Language},
		"userMessage":    &types.AttributeValueMemberS{Value: ex.UserMessage},
		"reply":          &types.AttributeValueMemberS{Value: ex.Reply},
		"status":         &types.AttributeValueMemberS{Value: ex.Status},
		"ttl":            &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.TTL, 10)},
	}
	if ex.CaseID != "" {
		item["caseId"] = &types.AttributeValueMemberS{Value: ex.CaseID}
	}
	return item
}

func metaItem(meta domain.ConversationMeta) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: meta.PK},
		"SK":             &types.AttributeValueMemberS{Value: meta.SK},
		"conversationId": &types.AttributeValueMemberS{Value: meta.ConversationID},
		"lastActivity":   &types.AttributeValueMemberS{Value: meta.LastActivity},
		"turns":          &types.AttributeValueMemberN{Value: strconv.Itoa(meta.Turns)},
		"ttl":            &types.AttributeValueMemberN{Value: strconv.FormatInt(meta.TTL, 10)},
	}
	if meta.CaseID != "" {
		item["caseId"] = &types.AttributeValueMemberS{Value: meta.CaseID}
	}
	return item
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
