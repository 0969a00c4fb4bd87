package sqlstore

import "database/sql"

// schema is portable between SQLite and PostgreSQL. Timestamps are unix
// milliseconds; maps and lists are JSON text.
// families.admin_id has no foreign key: the family row is written before its
// admin inside the same transaction.
const schema = `
CREATE TABLE IF NOT EXISTS families (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    invitation_code TEXT NOT NULL,
    admin_id TEXT NOT NULL,
    settings TEXT NOT NULL DEFAULT '{}',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL,
    registered_at BIGINT NOT NULL,
    last_access_at BIGINT
);

CREATE TABLE IF NOT EXISTS albums (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
    creator_id TEXT NOT NULL REFERENCES users(id),
    visibility TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    cover_photo_id TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS photos (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    storage_key TEXT NOT NULL,
    file_url TEXT NOT NULL,
    thumbnail_url TEXT NOT NULL DEFAULT '',
    album_id TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
    family_id TEXT NOT NULL,
    uploaded_by TEXT NOT NULL REFERENCES users(id),
    uploaded_at BIGINT NOT NULL,
    captured_at BIGINT,
    lat DOUBLE PRECISION,
    lng DOUBLE PRECISION,
    place_name TEXT NOT NULL DEFAULT '',
    tagged_people TEXT NOT NULL DEFAULT '[]',
    description TEXT NOT NULL DEFAULT '',
    anecdote TEXT NOT NULL DEFAULT '',
    metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL REFERENCES users(id),
    text TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    edited BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS reactions (
    id TEXT PRIMARY KEY,
    photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL REFERENCES users(id),
    kind TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_families_invitation_code ON families(invitation_code);
CREATE UNIQUE INDEX IF NOT EXISTS idx_reactions_photo_author ON reactions(photo_id, author_id);
CREATE INDEX IF NOT EXISTS idx_users_family_id ON users(family_id);
CREATE INDEX IF NOT EXISTS idx_albums_family_id ON albums(family_id);
CREATE INDEX IF NOT EXISTS idx_photos_album_id ON photos(album_id);
CREATE INDEX IF NOT EXISTS idx_photos_family_captured ON photos(family_id, captured_at);
CREATE INDEX IF NOT EXISTS idx_comments_photo_id ON comments(photo_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
