package domain

// MediaTitle holds the three title variants the remote service exposes.
type MediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// CoverImage holds the two cover sizes the remote service exposes.
type CoverImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

// Media is the catalog record an entry refers to. One row per remote
// media ID, shared across every user that references it.
type Media struct {
	ID           int        `json:"id"`
	Title        MediaTitle `json:"title"`
	CoverImage   CoverImage `json:"coverImage"`
	BannerImage  string     `json:"bannerImage,omitempty"`
	Episodes     int        `json:"episodes"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	Season       string     `json:"season"`
	SeasonYear   int        `json:"seasonYear"`
	Genres       []string   `json:"genres"`
	AverageScore int        `json:"averageScore"`
	Description  string     `json:"description"`
}

// CachedEntry is the denormalized row the cache reader returns: a list
// entry joined to its media metadata. Media fields are zero-valued when
// the metadata has not been cached yet.
type CachedEntry struct {
	ID           int        `json:"id"`
	MediaID      int        `json:"media_id"`
	Username     string     `json:"username"`
	ListName     string     `json:"list_name"`
	Status       ListStatus `json:"status"`
	Score        float64    `json:"score"`
	Progress     int        `json:"progress"`
	Repeat       int        `json:"repeat_count"`
	StartedAt    string     `json:"started_at,omitempty"`
	CompletedAt  string     `json:"completed_at,omitempty"`
	UpdatedAt    int64      `json:"updated_at"`
	CreatedAt    int64      `json:"created_at"`
	SyncedAt     string     `json:"synced_at"`
	TitleRomaji  string     `json:"title_romaji,omitempty"`
	TitleEnglish string     `json:"title_english,omitempty"`
	TitleNative  string     `json:"title_native,omitempty"`
	CoverLarge   string     `json:"cover_image_large,omitempty"`
	CoverMedium  string     `json:"cover_image_medium,omitempty"`
	Episodes     *int       `json:"episodes"`
	Format       string     `json:"format,omitempty"`
	Genres       []string   `json:"genres"`
	AverageScore *int       `json:"average_score"`
	Description  string     `json:"description,omitempty"`
}
