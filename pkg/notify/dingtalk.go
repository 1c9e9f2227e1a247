package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dingtalkoauth2 "github.com/alibabacloud-go/dingtalk/oauth2_1_0"
	dingtalkrobot "github.com/alibabacloud-go/dingtalk/robot_1_0"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"

	"github.com/hoyobot/hoyobot-go/pkg/config"
)

// dingTalkSender delivers messages via a DingTalk robot. Targets starting
// with "cid" are treated as group conversation IDs, anything else as staff
// IDs.
type dingTalkSender struct {
	cfg config.DingTalkNotify

	robotClient *dingtalkrobot.Client
	oauthClient *dingtalkoauth2.Client
	initErr     error
	initOnce    sync.Once

	tokenMu       sync.Mutex
	accessToken   string
	tokenExpireAt time.Time
}

type dingTalkTextParam struct {
	Content string `json:"content"`
}

func newDingTalkSender(cfg config.DingTalkNotify) *dingTalkSender {
	return &dingTalkSender{cfg: cfg}
}

func (s *dingTalkSender) name() string {
	return "dingtalk"
}

func (s *dingTalkSender) init() error {
	s.initOnce.Do(func() {
		apiConfig := &openapi.Config{
			Protocol: tea.String("https"),
			RegionId: tea.String("central"),
		}

		robotClient, err := dingtalkrobot.NewClient(apiConfig)
		if err != nil {
			s.initErr = fmt.Errorf("failed to init dingtalk robot client: %w", err)
			return
		}
		s.robotClient = robotClient

		oauthClient, err := dingtalkoauth2.NewClient(apiConfig)
		if err != nil {
			s.initErr = fmt.Errorf("failed to init dingtalk oauth client: %w", err)
			return
		}
		s.oauthClient = oauthClient
	})
	return s.initErr
}

func (s *dingTalkSender) getAccessToken() (string, error) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpireAt) {
		return s.accessToken, nil
	}

	req := &dingtalkoauth2.GetAccessTokenRequest{
		AppKey:    tea.String(s.cfg.ClientID),
		AppSecret: tea.String(s.cfg.AppSecret),
	}
	resp, err := s.oauthClient.GetAccessToken(req)
	if err != nil {
		return "", err
	}
	if resp.Body == nil || resp.Body.AccessToken == nil {
		return "", fmt.Errorf("failed to get access token, response body is empty")
	}

	s.accessToken = *resp.Body.AccessToken
	// ExpireIn is seconds. Buffer it by 60s
	expireIn := *resp.Body.ExpireIn
	s.tokenExpireAt = time.Now().Add(time.Duration(expireIn-60) * time.Second)

	return s.accessToken, nil
}

func (s *dingTalkSender) send(game, message string) error {
	if err := s.init(); err != nil {
		return err
	}
	token, err := s.getAccessToken()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	param := dingTalkTextParam{Content: fmt.Sprintf("[%s] %s", game, message)}
	paramBytes, _ := json.Marshal(param)

	var groups, users []string
	for _, target := range s.cfg.Targets {
		if strings.HasPrefix(target, "cid") {
			groups = append(groups, target)
		} else {
			users = append(users, target)
		}
	}

	for _, cid := range groups {
		headers := &dingtalkrobot.OrgGroupSendHeaders{
			XAcsDingtalkAccessToken: tea.String(token),
		}
		req := &dingtalkrobot.OrgGroupSendRequest{
			RobotCode:          tea.String(s.cfg.RobotCode),
			OpenConversationId: tea.String(cid),
			MsgKey:             tea.String("sampleText"),
			MsgParam:           tea.String(string(paramBytes)),
		}
		if _, err := s.robotClient.OrgGroupSendWithOptions(req, headers, &util.RuntimeOptions{}); err != nil {
			return fmt.Errorf("failed to send dingtalk group message: %w", err)
		}
	}

	if len(users) > 0 {
		headers := &dingtalkrobot.BatchSendOTOHeaders{
			XAcsDingtalkAccessToken: tea.String(token),
		}
		userIDs := make([]*string, 0, len(users))
		for _, id := range users {
			userIDs = append(userIDs, tea.String(id))
		}
		req := &dingtalkrobot.BatchSendOTORequest{
			RobotCode: tea.String(s.cfg.RobotCode),
			UserIds:   userIDs,
			MsgKey:    tea.String("sampleText"),
			MsgParam:  tea.String(string(paramBytes)),
		}
		if _, err := s.robotClient.BatchSendOTOWithOptions(req, headers, &util.RuntimeOptions{}); err != nil {
			return fmt.Errorf("failed to send dingtalk message: %w", err)
		}
	}

	return nil
}
