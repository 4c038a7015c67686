package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/apichain/internal/types"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

var defaultUsers = []types.User{
	{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz", Phone: "1-770-736-8031 x56442", Website: "hildegard.org"},
	{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv", Phone: "010-692-6593 x09125", Website: "anastasia.net"},
	{ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net", Phone: "1-463-123-4447", Website: "ramiro.info"},
	{ID: 4, Name: "Patricia Lebsack", Username: "Karianne", Email: "Julianne.OConner@kory.org", Phone: "493-170-9623 x156", Website: "kale.biz"},
	{ID: 5, Name: "Chelsey Dietrich", Username: "Kamren", Email: "Lucio_Hettinger@annie.ca", Phone: "(254)954-1289", Website: "demarco.info"},
	{ID: 6, Name: "Mrs. Dennis Schulist", Username: "Leopoldo_Corkery", Email: "Karley_Dach@jasper.info", Phone: "1-477-935-8478 x6430", Website: "ola.org"},
	{ID: 7, Name: "Kurtis Weissnat", Username: "Elwyn.Skiles", Email: "Telly.Hoeger@billy.biz", Phone: "210.067.6132", Website: "elvis.io"},
	{ID: 8, Name: "Nicholas Runolfsdottir V", Username: "Maxime_Nienow", Email: "Sherwood@rosamond.me", Phone: "586.493.6943 x140", Website: "jacynthe.com"},
	{ID: 9, Name: "Glenna Reichert", Username: "Delphine", Email: "Chaim_McDermott@dana.io", Phone: "(775)976-6794 x41206", Website: "conrad.com"},
	{ID: 10, Name: "Clementina DuBuque", Username: "Moriah.Stanton", Email: "Rey.Padberg@karina.biz", Phone: "024-648-3804", Website: "ambrose.net"},
}

var loremWords = []string{
	"sunt", "aut", "facere", "repellat", "provident", "occaecati", "excepturi",
	"optio", "reprehenderit", "qui", "est", "esse", "dolorem", "ipsum", "eum",
	"voluptate", "velit", "nesciunt", "quas", "odio", "magnam", "quia", "rerum",
	"tempore", "vitae", "sequi", "sint", "nihil", "dolor", "beatae", "ea",
}

const (
	postsPerUser    = 10
	commentsPerPost = 5
)

// lorem builds a deterministic phrase of n words starting at seed
func lorem(seed, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = loremWords[(seed*7+i*3)%len(loremWords)]
	}
	return strings.Join(words, " ")
}

// DefaultDataset returns the built-in JSONPlaceholder-shaped dataset:
// 10 users, 10 posts per user and 5 comments per post
func DefaultDataset() *Dataset {
	ds := &Dataset{
		Users:    make([]types.User, len(defaultUsers)),
		Posts:    make([]types.Post, 0, len(defaultUsers)*postsPerUser),
		Comments: make([]types.Comment, 0, len(defaultUsers)*postsPerUser*commentsPerPost),
	}
	copy(ds.Users, defaultUsers)

	for _, u := range defaultUsers {
		for i := 0; i < postsPerUser; i++ {
			postID := len(ds.Posts) + 1
			ds.Posts = append(ds.Posts, types.Post{
				ID:     postID,
				UserID: u.ID,
				Title:  lorem(postID, 4+postID%5),
				Body:   lorem(postID+1, 24),
			})
			for j := 0; j < commentsPerPost; j++ {
				commentID := len(ds.Comments) + 1
				ds.Comments = append(ds.Comments, types.Comment{
					ID:     commentID,
					PostID: postID,
					Name:   lorem(commentID, 5),
					Email:  fmt.Sprintf("%s@%s", strings.ToLower(defaultUsers[commentID%len(defaultUsers)].Username), "example.com"),
					Body:   lorem(commentID+2, 18),
				})
			}
		}
	}
	return ds
}

// LoadDataset loads a dataset from a .yaml, .yml, .json or .jsonc file
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var ds Dataset

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &ds); err != nil {
			return nil, fmt.Errorf("failed to parse JSON dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := validateDataset(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	return &ds, nil
}

// validateDataset checks ids are unique and references resolve
func validateDataset(ds *Dataset) error {
	users := make(map[int]bool, len(ds.Users))
	for i, u := range ds.Users {
		if u.ID <= 0 {
			return fmt.Errorf("user %d: id must be positive", i)
		}
		if users[u.ID] {
			return fmt.Errorf("user %d: duplicate id %d", i, u.ID)
		}
		users[u.ID] = true
	}

	posts := make(map[int]bool, len(ds.Posts))
	for i, p := range ds.Posts {
		if p.ID <= 0 {
			return fmt.Errorf("post %d: id must be positive", i)
		}
		if posts[p.ID] {
			return fmt.Errorf("post %d: duplicate id %d", i, p.ID)
		}
		if !users[p.UserID] {
			return fmt.Errorf("post %d: unknown userId %d", p.ID, p.UserID)
		}
		posts[p.ID] = true
	}

	comments := make(map[int]bool, len(ds.Comments))
	for i, c := range ds.Comments {
		if c.ID <= 0 {
			return fmt.Errorf("comment %d: id must be positive", i)
		}
		if comments[c.ID] {
			return fmt.Errorf("comment %d: duplicate id %d", i, c.ID)
		}
		if !posts[c.PostID] {
			return fmt.Errorf("comment %d: unknown postId %d", c.ID, c.PostID)
		}
		comments[c.ID] = true
	}

	return nil
}

// SaveDataset writes a dataset to a .yaml, .yml or .json file
func SaveDataset(ds *Dataset, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(ds)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(ds, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported dataset file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}

	return nil
}

// ParseFault parses "METHOD /path=STATUS" or "METHOD /path=STATUS@DELAYms".
// STATUS may be 0 to only add a delay.
func ParseFault(s string) (Fault, error) {
	route, result, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return Fault{}, fmt.Errorf("invalid fault %q: expected METHOD /path=STATUS[@DELAYms]", s)
	}
	method, path, ok := strings.Cut(strings.TrimSpace(route), " ")
	if !ok || method == "" || !strings.HasPrefix(strings.TrimSpace(path), "/") {
		return Fault{}, fmt.Errorf("invalid fault %q: expected METHOD /path", s)
	}

	f := Fault{Method: strings.ToUpper(method), Path: strings.TrimSpace(path)}

	statusPart, delayPart, hasDelay := strings.Cut(result, "@")
	if _, err := fmt.Sscanf(statusPart, "%d", &f.Status); err != nil {
		return Fault{}, fmt.Errorf("invalid fault %q: bad status: %w", s, err)
	}
	if f.Status != 0 && (f.Status < 100 || f.Status > 599) {
		return Fault{}, fmt.Errorf("invalid fault %q: status must be 0 or 100-599", s)
	}
	if hasDelay {
		if _, err := fmt.Sscanf(strings.TrimSuffix(delayPart, "ms"), "%d", &f.Delay); err != nil || f.Delay < 0 {
			return Fault{}, fmt.Errorf("invalid fault %q: bad delay", s)
		}
	}
	return f, nil
}
