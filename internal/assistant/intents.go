package assistant

import "google.golang.org/genai"

// Intent names the model may choose from. The catalog is fixed; anything
// else the model says is treated as a direct reply.
const (
	IntentListBoards   = "list_boards"
	IntentListToday    = "list_today_tasks"
	IntentCreateBoard  = "create_board"
	IntentCreateList   = "create_list"
	IntentDeleteList   = "delete_list"
	IntentCreateCard   = "create_card"
	IntentMoveCard     = "move_card"
	IntentDeleteCard   = "delete_card"
	IntentGetBoardInfo = "get_board_info"
	IntentListOptions  = "list_available_options"
)

// IntentDeclarations is the function-calling catalog handed to the model.
// Slot values are free text; the dispatcher resolves them against the
// user's actual boards, lists, and cards.
func IntentDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        IntentListBoards,
			Description: "List every board the user owns or is a member of.",
		},
		{
			Name:        IntentListToday,
			Description: "List the user's tasks for today.",
		},
		{
			Name:        IntentCreateBoard,
			Description: "Create a new board.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString, Description: "Board title."},
					"description": {Type: genai.TypeString, Description: "Optional board description."},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        IntentCreateList,
			Description: "Create a new list (column) on a board.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":  {Type: genai.TypeString, Description: "List title."},
					"board": {Type: genai.TypeString, Description: "Board name, if the user named one."},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        IntentDeleteList,
			Description: "Delete a list and every card in it.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":  {Type: genai.TypeString, Description: "List name."},
					"board": {Type: genai.TypeString, Description: "Board name, if the user named one."},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        IntentCreateCard,
			Description: "Create a new card on a list.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString, Description: "Card title."},
					"description": {Type: genai.TypeString, Description: "Optional card description."},
					"list":        {Type: genai.TypeString, Description: "List name, if the user named one."},
					"priority":    {Type: genai.TypeString, Description: "low, medium, or high.", Enum: []string{"low", "medium", "high"}},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        IntentMoveCard,
			Description: "Move a card to another list or position.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString, Description: "Card title."},
					"target_list": {Type: genai.TypeString, Description: "Destination list name."},
					"position":    {Type: genai.TypeInteger, Description: "Target position, 0-based. -1 or omitted means the bottom."},
				},
				Required: []string{"title", "target_list"},
			},
		},
		{
			Name:        IntentDeleteCard,
			Description: "Delete a card.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {Type: genai.TypeString, Description: "Card title."},
					"list":  {Type: genai.TypeString, Description: "List name, if the user named one."},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        IntentGetBoardInfo,
			Description: "Summarize a board: its lists and how many cards each holds.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"board": {Type: genai.TypeString, Description: "Board name, if the user named one."},
				},
			},
		},
		{
			Name:        IntentListOptions,
			Description: "Explain what the assistant can do.",
		},
	}
}
