package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "tkrell_user")
	password := getEnv("DB_PASSWORD", "tkrell_password")
	dbname := getEnv("DB_NAME", "tkrell")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id                   BIGSERIAL PRIMARY KEY,
		email                VARCHAR(320) UNIQUE NOT NULL,
		name                 TEXT NOT NULL,
		password             VARCHAR(255) NOT NULL,
		role                 VARCHAR(20) NOT NULL DEFAULT 'user',
		xp                   BIGINT NOT NULL DEFAULT 0,
		coins                BIGINT NOT NULL DEFAULT 0,
		level                INT NOT NULL DEFAULT 1,
		streak               INT NOT NULL DEFAULT 0,
		streak_freeze_tokens INT NOT NULL DEFAULT 0,
		last_streak_update   TIMESTAMP WITH TIME ZONE,
		free_expires_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW() + INTERVAL '1 year',
		created_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_signed_in       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS student_profiles (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		grade_level VARCHAR(20) NOT NULL,
		county      VARCHAR(100),
		school      VARCHAR(255),
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		topic       TEXT NOT NULL,
		grade_level VARCHAR(20),
		source      VARCHAR(20) NOT NULL DEFAULT 'ai',
		metadata    JSONB,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes(user_id);

	CREATE TABLE IF NOT EXISTS questions (
		id             BIGSERIAL PRIMARY KEY,
		quiz_id        BIGINT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		question       TEXT NOT NULL,
		question_type  VARCHAR(10) NOT NULL,
		options        JSONB,
		correct_answer TEXT NOT NULL,
		explanation    TEXT,
		points         INT NOT NULL DEFAULT 10
	);

	CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id);

	CREATE TABLE IF NOT EXISTS results (
		id           BIGSERIAL PRIMARY KEY,
		quiz_id      BIGINT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		score        INT NOT NULL,
		total_points INT NOT NULL,
		xp_earned    INT NOT NULL DEFAULT 0,
		coins_earned INT NOT NULL DEFAULT 0,
		feedback     JSONB,
		completed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_id);
	CREATE INDEX IF NOT EXISTS idx_results_quiz ON results(quiz_id);

	CREATE TABLE IF NOT EXISTS notes (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       VARCHAR(255) NOT NULL,
		content     TEXT NOT NULL,
		subject     VARCHAR(100),
		grade_level VARCHAR(20),
		is_public   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);

	CREATE TABLE IF NOT EXISTS uploads (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       VARCHAR(255) NOT NULL,
		description TEXT,
		file_url    TEXT NOT NULL,
		file_type   VARCHAR(50),
		file_size   BIGINT,
		subject     VARCHAR(100),
		topic       VARCHAR(255),
		grade_level VARCHAR(20),
		visibility  VARCHAR(10) NOT NULL DEFAULT 'private',
		tags        JSONB,
		views       INT NOT NULL DEFAULT 0,
		likes       INT NOT NULL DEFAULT 0,
		downloads   INT NOT NULL DEFAULT 0,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_user ON uploads(user_id);
	CREATE INDEX IF NOT EXISTS idx_uploads_public ON uploads(visibility, created_at DESC);

	CREATE TABLE IF NOT EXISTS upload_likes (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		upload_id  BIGINT NOT NULL REFERENCES uploads(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, upload_id)
	);

	CREATE TABLE IF NOT EXISTS past_papers (
		id          BIGSERIAL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		subject     VARCHAR(100) NOT NULL,
		grade_level VARCHAR(20) NOT NULL,
		exam_board  VARCHAR(50),
		year        INT,
		file_url    TEXT,
		uploaded_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(title, year)
	);

	CREATE INDEX IF NOT EXISTS idx_papers_subject ON past_papers(subject);
	CREATE INDEX IF NOT EXISTS idx_papers_grade ON past_papers(grade_level);

	CREATE TABLE IF NOT EXISTS leaderboard (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		total_xp    BIGINT NOT NULL DEFAULT 0,
		total_coins BIGINT NOT NULL DEFAULT 0,
		county      VARCHAR(100),
		school      VARCHAR(255),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_leaderboard_xp ON leaderboard(total_xp DESC);

	CREATE TABLE IF NOT EXISTS payments (
		id                  BIGSERIAL PRIMARY KEY,
		user_id             BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount              INT NOT NULL,
		currency            VARCHAR(3) NOT NULL DEFAULT 'KES',
		status              VARCHAR(20) NOT NULL DEFAULT 'pending',
		transaction_ref     VARCHAR(100) UNIQUE NOT NULL,
		mpesa_receipt       VARCHAR(100),
		checkout_request_id VARCHAR(100),
		phone_number        VARCHAR(20),
		tier                VARCHAR(20) NOT NULL,
		created_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id);
	CREATE INDEX IF NOT EXISTS idx_payments_ref ON payments(transaction_ref);
	CREATE INDEX IF NOT EXISTS idx_payments_checkout ON payments(checkout_request_id);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		tier       VARCHAR(20) NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		payment_id BIGINT REFERENCES payments(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id              BIGSERIAL PRIMARY KEY,
		participant1_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		participant2_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		last_message_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(participant1_id, participant2_id),
		CHECK(participant1_id != participant2_id)
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_p1 ON conversations(participant1_id, last_message_at DESC);
	CREATE INDEX IF NOT EXISTS idx_conversations_p2 ON conversations(participant2_id, last_message_at DESC);

	CREATE TABLE IF NOT EXISTS messages (
		id              BIGSERIAL PRIMARY KEY,
		conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content         TEXT NOT NULL,
		message_type    VARCHAR(10) NOT NULL DEFAULT 'text',
		file_url        TEXT,
		is_read         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS referrals (
		id          BIGSERIAL PRIMARY KEY,
		referrer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code        VARCHAR(20) UNIQUE NOT NULL,
		redeemed    BOOLEAN NOT NULL DEFAULT FALSE,
		referred_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_referrals_code ON referrals(code);

	CREATE TABLE IF NOT EXISTS tutor_chats (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message    TEXT NOT NULL,
		response   TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_tutor_chats_user ON tutor_chats(user_id, created_at DESC);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent ALTERs for databases created before these columns existed
	alterStatements := []string{
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS streak_freeze_tokens INT NOT NULL DEFAULT 0`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS last_streak_update TIMESTAMP WITH TIME ZONE`,
		`ALTER TABLE payments ADD COLUMN IF NOT EXISTS mpesa_receipt VARCHAR(100)`,
		`ALTER TABLE payments ADD COLUMN IF NOT EXISTS checkout_request_id VARCHAR(100)`,
		`ALTER TABLE leaderboard ADD COLUMN IF NOT EXISTS total_coins BIGINT NOT NULL DEFAULT 0`,
	}

	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
