package seed

// Entry is one link of the seed file.
type Entry struct {
	Title    string   `yaml:"title"`
	URL      string   `yaml:"url"`
	Tags     []string `yaml:"tags"`
	Notes    string   `yaml:"notes"`
	Language string   `yaml:"language"`
	Favorite bool     `yaml:"favorite"`
}

// File is the root structure of the seed file:
//
//	links:
//	  - title: Khaosod English
//	    url: khaosodenglish.com
//	    tags: [news]
//	    language: en
type File struct {
	Links []Entry `yaml:"links"`
}
