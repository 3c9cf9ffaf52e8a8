package chat

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tkrell/backend/internal/models"
)

// ErrNotParticipant means the user is not part of the conversation.
var ErrNotParticipant = errors.New("not a participant")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// canonicalPair orders two user ids so each pair maps to exactly one
// conversation row regardless of who starts it.
func canonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreateConversation returns the conversation between two users,
// creating it on first contact.
func (s *Store) GetOrCreateConversation(userID, otherUserID int64) (*models.Conversation, error) {
	p1, p2 := canonicalPair(userID, otherUserID)

	var c models.Conversation
	err := s.db.QueryRow(
		`INSERT INTO conversations (participant1_id, participant2_id)
		 VALUES ($1, $2)
		 ON CONFLICT (participant1_id, participant2_id) DO UPDATE SET participant1_id = EXCLUDED.participant1_id
		 RETURNING id, participant1_id, participant2_id, last_message_at, created_at`,
		p1, p2,
	).Scan(&c.ID, &c.Participant1ID, &c.Participant2ID, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns the user's conversations, most recently
// active first, each with the other party and an unread count.
func (s *Store) ListConversations(userID int64) ([]models.ConversationEntry, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.participant1_id, c.participant2_id, c.last_message_at, c.created_at,
		        u.id, u.name, u.email,
		        (SELECT COUNT(*) FROM messages m
		         WHERE m.conversation_id = c.id AND m.sender_id != $1 AND NOT m.is_read) AS unread
		 FROM conversations c
		 JOIN users u ON u.id = CASE WHEN c.participant1_id = $1 THEN c.participant2_id ELSE c.participant1_id END
		 WHERE c.participant1_id = $1 OR c.participant2_id = $1
		 ORDER BY c.last_message_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	entries := []models.ConversationEntry{}
	for rows.Next() {
		var e models.ConversationEntry
		if err := rows.Scan(&e.ID, &e.Participant1ID, &e.Participant2ID, &e.LastMessageAt, &e.CreatedAt,
			&e.OtherUser.ID, &e.OtherUser.Name, &e.OtherUser.Email, &e.UnreadCount); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isParticipant reports whether the user belongs to the conversation.
func (s *Store) isParticipant(conversationID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM conversations
		 WHERE id = $1 AND (participant1_id = $2 OR participant2_id = $2))`,
		conversationID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking participant: %w", err)
	}
	return ok, nil
}

// GetMessages returns a page of messages in chronological order within
// the page. Pagination walks backwards from the newest.
func (s *Store) GetMessages(conversationID, userID int64, limit, offset int) ([]models.Message, error) {
	ok, err := s.isParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, conversation_id, sender_id, sender_name, content, message_type, COALESCE(file_url, ''), is_read, created_at
		 FROM (
			SELECT m.id, m.conversation_id, m.sender_id, u.name AS sender_name, m.content,
			       m.message_type, m.file_url, m.is_read, m.created_at
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.conversation_id = $1
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2 OFFSET $3
		 ) page ORDER BY created_at ASC, id ASC`,
		conversationID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Content, &m.MessageType, &m.FileURL, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SendMessage inserts a message and bumps the conversation's activity
// timestamp in one transaction.
func (s *Store) SendMessage(conversationID, senderID int64, req models.SendMessageRequest) (*models.Message, error) {
	ok, err := s.isParticipant(conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	msgType := req.MessageType
	if msgType == "" {
		msgType = models.MessageText
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning send tx: %w", err)
	}
	defer tx.Rollback()

	var m models.Message
	var fileURL sql.NullString
	err = tx.QueryRow(
		`INSERT INTO messages (conversation_id, sender_id, content, message_type, file_url)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING id, conversation_id, sender_id, content, message_type, file_url, is_read, created_at`,
		conversationID, senderID, req.Content, msgType, req.FileURL,
	).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.MessageType, &fileURL, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	m.FileURL = fileURL.String

	if _, err := tx.Exec(`UPDATE conversations SET last_message_at = NOW() WHERE id = $1`, conversationID); err != nil {
		return nil, fmt.Errorf("bumping conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing send tx: %w", err)
	}
	return &m, nil
}

// MarkRead marks the given messages as read. Only messages sent by the
// other party are affected; you cannot mark your own messages.
func (s *Store) MarkRead(conversationID, userID int64, messageIDs []int64) error {
	ok, err := s.isParticipant(conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	if len(messageIDs) == 0 {
		return nil
	}

	query := `UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id != $2 AND id = ANY($3)`
	if _, err := s.db.Exec(query, conversationID, userID, pq.Array(messageIDs)); err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	return nil
}

// OtherParticipant returns the other user in a conversation.
func (s *Store) OtherParticipant(conversationID, userID int64) (int64, error) {
	var other int64
	err := s.db.QueryRow(
		`SELECT CASE WHEN participant1_id = $2 THEN participant2_id ELSE participant1_id END
		 FROM conversations WHERE id = $1`,
		conversationID, userID,
	).Scan(&other)
	if err != nil {
		return 0, fmt.Errorf("querying other participant: %w", err)
	}
	return other, nil
}

// SearchUsers finds users by name or email for starting a conversation.
func (s *Store) SearchUsers(query string, excludeUserID int64, limit int) ([]models.UserSearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, name, email, role FROM users
		 WHERE id != $1 AND (name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		 ORDER BY name ASC LIMIT $3`,
		excludeUserID, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	results := []models.UserSearchResult{}
	for rows.Next() {
		var u models.UserSearchResult
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}
