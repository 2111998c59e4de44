package model

// Node is a read-only view over either kind of document node.
type Node struct {
	ID          string
	Kind        NodeKind
	Person      *PersonNode
	Achievement *AchievementNode
}

// PersonRef wraps a person as a Node.
func PersonRef(p *PersonNode) Node {
	return Node{ID: p.ID, Kind: KindPerson, Person: p}
}

// AchievementRef wraps an achievement as a Node.
func AchievementRef(a *AchievementNode) Node {
	return Node{ID: a.ID, Kind: KindAchievement, Achievement: a}
}

// Year is the position year: birth for persons, occurrence for achievements.
func (n Node) Year() int {
	switch n.Kind {
	case KindPerson:
		return n.Person.Birth
	case KindAchievement:
		return n.Achievement.Year
	}
	return 0
}

// Label is the text drawn next to the node.
func (n Node) Label() string {
	switch n.Kind {
	case KindPerson:
		return n.Person.Name
	case KindAchievement:
		return n.Achievement.Title
	}
	return n.ID
}

// PhotoURL returns the portrait for persons, or "".
func (n Node) PhotoURL() string {
	if n.Kind == KindPerson && n.Person != nil {
		return n.Person.PhotoURL
	}
	return ""
}
