package repositories

import (
	"encoding/binary"
	"fmt"
	"groupchat/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format so that the values stay readable
// by any protobuf tooling given the field numbers below.
//
//	message Chat    { string id = 1; string name = 2; repeated string participants = 3; int64 created_at = 4; }
//	message Message { string id = 1; string chat_id = 2; string sender_id = 3; string content = 4; int64 created_at = 5; }
//	message User    { string id = 1; string email = 2; string name = 3; string password_hash = 4; repeated string roles = 5; int64 created_at = 6; }

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixNano()))
}

// walkFields calls visit for every field of a wire-format record.
func walkFields(b []byte, visit func(num protowire.Number, typ protowire.Type, value []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return protowire.ParseError(m)
		}
		if err := visit(num, typ, b[:m]); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func consumeString(typ protowire.Type, value []byte) (string, error) {
	if typ != protowire.BytesType {
		return "", fmt.Errorf("unexpected wire type %d for string field", typ)
	}
	s, n := protowire.ConsumeString(value)
	if n < 0 {
		return "", protowire.ParseError(n)
	}
	return s, nil
}

func consumeTime(typ protowire.Type, value []byte) (time.Time, error) {
	if typ != protowire.VarintType {
		return time.Time{}, fmt.Errorf("unexpected wire type %d for time field", typ)
	}
	v, n := protowire.ConsumeVarint(value)
	if n < 0 {
		return time.Time{}, protowire.ParseError(n)
	}
	return time.Unix(0, int64(v)).UTC(), nil
}

func encodeChat(chat domain.Chat) []byte {
	var b []byte
	b = appendString(b, 1, chat.ID.String())
	b = appendString(b, 2, chat.Name)
	for _, participant := range chat.Participants {
		b = appendString(b, 3, participant)
	}
	return appendTime(b, 4, chat.CreatedAt)
}

func decodeChat(b []byte) (domain.Chat, error) {
	var chat domain.Chat
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, value []byte) (err error) {
		switch num {
		case 1:
			var id string
			id, err = consumeString(typ, value)
			chat.ID = domain.ChatID(id)
		case 2:
			chat.Name, err = consumeString(typ, value)
		case 3:
			var participant string
			if participant, err = consumeString(typ, value); err == nil {
				chat.Participants = append(chat.Participants, participant)
			}
		case 4:
			chat.CreatedAt, err = consumeTime(typ, value)
		}
		return err
	})
	return chat, err
}

func encodeMessage(message domain.Message) []byte {
	var b []byte
	b = appendString(b, 1, message.ID.String())
	b = appendString(b, 2, message.ChatID.String())
	b = appendString(b, 3, message.SenderID)
	b = appendString(b, 4, message.Content)
	return appendTime(b, 5, message.CreatedAt)
}

func decodeMessage(b []byte) (domain.Message, error) {
	var message domain.Message
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, value []byte) (err error) {
		var s string
		switch num {
		case 1:
			if s, err = consumeString(typ, value); err == nil {
				message.ID, err = uuid.Parse(s)
			}
		case 2:
			s, err = consumeString(typ, value)
			message.ChatID = domain.ChatID(s)
		case 3:
			message.SenderID, err = consumeString(typ, value)
		case 4:
			message.Content, err = consumeString(typ, value)
		case 5:
			message.CreatedAt, err = consumeTime(typ, value)
		}
		return err
	})
	return message, err
}

func encodeUser(user domain.User) []byte {
	var b []byte
	b = appendString(b, 1, user.ID)
	b = appendString(b, 2, user.Email)
	b = appendString(b, 3, user.Name)
	b = appendString(b, 4, user.PasswordHash)
	for _, role := range user.Roles {
		b = appendString(b, 5, role)
	}
	return appendTime(b, 6, user.CreatedAt)
}

func decodeUser(b []byte) (domain.User, error) {
	var user domain.User
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, value []byte) (err error) {
		switch num {
		case 1:
			user.ID, err = consumeString(typ, value)
		case 2:
			user.Email, err = consumeString(typ, value)
		case 3:
			user.Name, err = consumeString(typ, value)
		case 4:
			user.PasswordHash, err = consumeString(typ, value)
		case 5:
			var role string
			if role, err = consumeString(typ, value); err == nil {
				user.Roles = append(user.Roles, role)
			}
		case 6:
			user.CreatedAt, err = consumeTime(typ, value)
		}
		return err
	})
	return user, err
}

// DecodeRecord renders a stored value for debugging tools, based on its key prefix.
func DecodeRecord(key string, value []byte) (kind string, detail string, err error) {
	switch {
	case strings.HasPrefix(key, chatPrefix):
		chat, err := decodeChat(value)
		if err != nil {
			return "CHAT", "", err
		}
		return "CHAT", fmt.Sprintf("%s %v", chat.Name, chat.Participants), nil
	case strings.HasPrefix(key, messagePrefix):
		message, err := decodeMessage(value)
		if err != nil {
			return "MESSAGE", "", err
		}
		return "MESSAGE", fmt.Sprintf("%s: %s", message.SenderID, message.Content), nil
	case strings.HasPrefix(key, userPrefix):
		user, err := decodeUser(value)
		if err != nil {
			return "USER", "", err
		}
		return "USER", fmt.Sprintf("%s <%s>", user.DisplayName(), user.Email), nil
	case strings.HasPrefix(key, memberPrefix):
		return "MEMBERSHIP", "", nil
	case strings.HasPrefix(key, emailPrefix):
		return "EMAIL", string(value), nil
	case key == messageSequenceKey:
		if len(value) != 8 {
			return "SEQUENCE", "", fmt.Errorf("sequence value of %d bytes", len(value))
		}
		return "SEQUENCE", fmt.Sprintf("leased up to %d", binary.BigEndian.Uint64(value)), nil
	default:
		return "UNKNOWN", "", nil
	}
}
