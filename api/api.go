// Package api holds the wire types of the chat services. They are encoded as
// JSON both on the gRPC transport (content-subtype "json") and on the HTTP gateway.
package api

import "time"

const (
	AuthServiceName = "groupchat.v1.AuthService"
	ChatServiceName = "groupchat.v1.ChatService"

	AuthService_Register_FullMethodName          = "/" + AuthServiceName + "/Register"
	AuthService_Login_FullMethodName             = "/" + AuthServiceName + "/Login"
	AuthService_SignInAnonymously_FullMethodName = "/" + AuthServiceName + "/SignInAnonymously"
	AuthService_Me_FullMethodName                = "/" + AuthServiceName + "/Me"
	ChatService_CreateChat_FullMethodName        = "/" + ChatServiceName + "/CreateChat"
	ChatService_ListChats_FullMethodName         = "/" + ChatServiceName + "/ListChats"
	ChatService_SendMessage_FullMethodName       = "/" + ChatServiceName + "/SendMessage"
	ChatService_ListMessages_FullMethodName      = "/" + ChatServiceName + "/ListMessages"
	ChatService_SubscribeMessages_FullMethodName = "/" + ChatServiceName + "/SubscribeMessages"
	ChatService_SubscribeChats_FullMethodName    = "/" + ChatServiceName + "/SubscribeChats"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type SignInAnonymouslyRequest struct{}

type MeRequest struct{}

// UserProfile describes the caller. Name falls back to "Unknown" and Email is
// empty for anonymous accounts.
type UserProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

type CreateChatRequest struct {
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participantIds"`
}

type CreateChatResponse struct {
	ChatID string `json:"chatId"`
}

type ListChatsRequest struct{}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Chat struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type ListChatsResponse struct {
	Chats []Chat `json:"chats"`
}

type SendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

type SendMessageResponse struct{}

type ListMessagesRequest struct {
	ChatID string `json:"chatId"`
}

type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	ChatID     string    `json:"chatId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListMessagesResponse lists messages newest first.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type SubscribeMessagesRequest struct {
	ChatID string `json:"chatId"`
}

type SubscribeChatsRequest struct{}

type ErrorResponse struct {
	Error string `json:"error"`
}
