package domain

import "time"

// Kind 两棵分类树：商品类目（大类/子类）与地区（城市/区）
type Kind string

const (
	KindCategory Kind = "category"
	KindLocation Kind = "location"
)

// Node 两棵树共用的节点形状；ParentID 为空即根节点
type Node struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Icon      string    `gorm:"size:255" json:"icon,omitempty"`
	ParentID  *string   `gorm:"size:36;index" json:"parent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Node) IsRoot() bool { return n.ParentID == nil }

// Category / Location 仅用于建表，读写统一走 Node + Table()
type Category struct {
	Node `gorm:"embedded"`
}

func (Category) TableName() string { return "categories" }

type Location struct {
	Node `gorm:"embedded"`
}

func (Location) TableName() string { return "locations" }

// Link 父 → 子 索引，是 ParentID 的派生投影，可整体重建
type Link struct {
	ParentID  string    `gorm:"primaryKey;size:36"`
	ChildID   string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

type CategoryLink struct {
	Link `gorm:"embedded"`
}

func (CategoryLink) TableName() string { return "category_children" }

type LocationLink struct {
	Link `gorm:"embedded"`
}

func (LocationLink) TableName() string { return "location_districts" }

// Tree 描述一棵树的物理表与规则
type Tree struct {
	Kind        Kind
	Nodes       string
	Links       string
	RequireIcon bool     // 根节点是否必须带 icon
	AdColumns   []string // ads 表中引用该树节点的列
}

var (
	CategoryTree = Tree{
		Kind:        KindCategory,
		Nodes:       Category{}.TableName(),
		Links:       CategoryLink{}.TableName(),
		RequireIcon: true,
		AdColumns:   []string{"category_id", "subcategory_id"},
	}
	LocationTree = Tree{
		Kind:      KindLocation,
		Nodes:     Location{}.TableName(),
		Links:     LocationLink{}.TableName(),
		AdColumns: []string{"location_id"},
	}
)

// NodeRef 展开子节点时只给 id + name
type NodeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RootWithChildren struct {
	Node
	Children []NodeRef `json:"children"`
}
